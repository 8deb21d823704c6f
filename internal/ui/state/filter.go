package state

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter replaces the query and places the filter cursor. Entering a
// query remembers the cursor; clearing it restores that position.
func (l *Level) SetFilter(query string, cursor int) {
	trimmed := strings.TrimSpace(query)
	wasFiltered := strings.TrimSpace(l.Filter) != ""
	l.Filter = query
	l.FilterCursor = min(max(cursor, 0), len([]rune(query)))

	switch {
	case trimmed != "" && !wasFiltered:
		l.LastCursor = l.Cursor
	case trimmed == "" && wasFiltered:
		restore := l.LastCursor
		l.LastCursor = -1
		l.applyFilter()
		if restore >= 0 && restore < len(l.Items) {
			l.Cursor = restore
		}
		return
	}
	l.applyFilter()
	if trimmed != "" {
		l.Cursor = max(BestMatchIndex(l.Items, trimmed), 0)
	}
}

func (l *Level) applyFilter() {
	l.Items = FilterItems(l.Full, l.Filter)
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = min(max(l.Cursor, 0), len(l.Items)-1)
}

// FilterCursorPos returns the filter cursor as a rune offset.
func (l *Level) FilterCursorPos() int {
	return min(max(l.FilterCursor, 0), len([]rune(l.Filter)))
}

// InsertFilterText inserts text at the filter cursor.
func (l *Level) InsertFilterText(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	l.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward removes the rune before the filter cursor.
func (l *Level) DeleteFilterRuneBackward() bool {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	if pos == 0 {
		return false
	}
	l.SetFilter(string(append(runes[:pos-1:pos-1], runes[pos:]...)), pos-1)
	return true
}

// DeleteFilterWordBackward removes the word before the filter cursor.
func (l *Level) DeleteFilterWordBackward() bool {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	start := wordStart(runes, pos)
	if start == pos {
		return false
	}
	l.SetFilter(string(append(runes[:start:start], runes[pos:]...)), start)
	return true
}

// MoveFilterCursor moves the filter cursor by delta runes.
func (l *Level) MoveFilterCursor(delta int) bool {
	pos := l.FilterCursorPos()
	next := min(max(pos+delta, 0), len([]rune(l.Filter)))
	l.FilterCursor = next
	return next != pos
}

// MoveFilterCursorStart moves the filter cursor to the start.
func (l *Level) MoveFilterCursorStart() bool {
	return l.MoveFilterCursor(-l.FilterCursorPos())
}

// MoveFilterCursorEnd moves the filter cursor past the last rune.
func (l *Level) MoveFilterCursorEnd() bool {
	return l.MoveFilterCursor(len([]rune(l.Filter)))
}

// MoveFilterCursorWordBackward jumps to the start of the previous word.
func (l *Level) MoveFilterCursorWordBackward() bool {
	pos := l.FilterCursorPos()
	return l.MoveFilterCursor(wordStart([]rune(l.Filter), pos) - pos)
}

// MoveFilterCursorWordForward jumps past the next word.
func (l *Level) MoveFilterCursorWordForward() bool {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return l.MoveFilterCursor(i - pos)
}

func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}

// FilterItems keeps the items whose name fuzzy-matches query, in their
// original order.
func FilterItems(items []Item, query string) []Item {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return CloneItems(items)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names(items))
	keep := make([]int, 0, len(ranks))
	for _, rank := range ranks {
		keep = append(keep, rank.OriginalIndex)
	}
	sort.Ints(keep)
	out := make([]Item, 0, len(keep))
	for _, idx := range keep {
		out = append(out, items[idx])
	}
	return out
}

// BestMatchIndex picks the row the cursor should land on for query: an
// exact name, then a name prefix, then the closest fuzzy match. It returns
// -1 only for an empty list.
func BestMatchIndex(items []Item, query string) int {
	if len(items) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	for i, item := range items {
		if strings.EqualFold(item.Name, trimmed) {
			return i
		}
	}
	lower := strings.ToLower(trimmed)
	for i, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Name), lower) {
			return i
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names(items))
	if len(ranks) == 0 {
		return 0
	}
	sort.Sort(ranks)
	return ranks[0].OriginalIndex
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}
