package state

import "github.com/atomicstack/multiview/internal/mv"

// Level is one entry of the navigation stack: the children of a single
// parent widget plus the cursor, filter and marks the user set on them.
type Level struct {
	ID             string
	Title          string
	Model          mv.Model
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	Marked         map[string]struct{}
	LastCursor     int
	ViewportOffset int
}

// NewLevel builds a level for the widget id showing items.
func NewLevel(id, title string, model mv.Model, items []Item) *Level {
	l := &Level{
		ID:         id,
		Title:      title,
		Model:      model,
		Cursor:     0,
		LastCursor: -1,
		Marked:     make(map[string]struct{}),
	}
	l.UpdateItems(items)
	return l
}

// IndexOf returns the visible index of the item with id, or -1.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (l *Level) Current() (Item, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Item{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems replaces the rows after the tree changed. The cursor follows
// the item it was on when that item is still present.
func (l *Level) UpdateItems(items []Item) {
	prevID := ""
	if cur, ok := l.Current(); ok {
		prevID = cur.ID
	}
	l.Full = CloneItems(items)
	l.CleanupMarks()
	l.applyFilter()
	if idx := l.IndexOf(prevID); idx >= 0 {
		l.Cursor = idx
	}
	if len(l.Items) == 0 || l.ViewportOffset < 0 || l.ViewportOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
	}
}
