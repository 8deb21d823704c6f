package ui

import (
	"unicode"

	"github.com/atomicstack/multiview/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const filterPlaceholder = "(type to filter)"

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(l *level, before int) {
	if l != nil && before != l.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

// editFilter applies an edit to the current level's filter and reports
// whether it changed anything.
func (m *Model) editFilter(edit func(*level) bool, trace func(*level)) bool {
	current := m.currentLevel()
	if current == nil {
		return false
	}
	before := current.FilterCursorPos()
	if !edit(current) {
		return false
	}
	m.noteFilterCursorChange(current, before)
	if trace != nil {
		trace(current)
	}
	m.syncViewport(current)
	return true
}

func (m *Model) filterChanged() {
	m.forceClearInfo()
	m.errMsg = ""
}

func (m *Model) handleTextInput(msg tea.KeyMsg) bool {
	traceCursor := func(l *level) { events.Filter.Cursor(l.ID, l.FilterCursor) }
	switch msg.String() {
	case "ctrl+u":
		return m.editFilter(func(l *level) bool {
			if l.Filter == "" {
				return false
			}
			l.SetFilter("", 0)
			return true
		}, func(l *level) {
			m.filterChanged()
			events.Filter.Cleared(l.ID)
		})
	case "ctrl+w":
		return m.editFilter((*level).DeleteFilterWordBackward, func(l *level) {
			m.filterChanged()
			events.Filter.WordBackspace(l.ID, l.Filter)
		})
	case "ctrl+a":
		return m.editFilter((*level).MoveFilterCursorStart, traceCursor)
	case "ctrl+e":
		return m.editFilter((*level).MoveFilterCursorEnd, traceCursor)
	case "alt+b":
		return m.editFilter((*level).MoveFilterCursorWordBackward, traceCursor)
	case "alt+f":
		return m.editFilter((*level).MoveFilterCursorWordForward, traceCursor)
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.editFilter((*level).DeleteFilterRuneBackward, func(l *level) {
			m.filterChanged()
			events.Filter.Backspace(l.ID, l.Filter)
		})
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false
			}
		}
		return m.appendToFilter(string(msg.Runes))
	case tea.KeySpace:
		return m.appendToFilter(" ")
	case tea.KeyLeft:
		return m.editFilter(func(l *level) bool { return l.MoveFilterCursor(-1) }, traceCursor)
	case tea.KeyRight:
		return m.editFilter(func(l *level) bool { return l.MoveFilterCursor(1) }, traceCursor)
	}
	return false
}

func (m *Model) appendToFilter(text string) bool {
	return m.editFilter(func(l *level) bool { return l.InsertFilterText(text) }, func(l *level) {
		m.filterChanged()
		events.Filter.Append(l.ID, l.Filter)
	})
}

func (m *Model) filterPrompt() string {
	current := m.currentLevel()
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	prompt := render(styles.FilterPrompt, "» ")
	if current == nil {
		return prompt
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	runes := []rune(current.Filter)
	if len(runes) == 0 {
		placeholder := []rune(filterPlaceholder)
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		return prompt + m.renderFilterCursor(string(placeholder[0])) + render(styles.FilterPlaceholder, string(placeholder[1:]))
	}
	pos := current.FilterCursorPos()
	caret, after := " ", ""
	if pos < len(runes) {
		caret = string(runes[pos])
		after = string(runes[pos+1:])
	}
	return prompt + render(styles.Filter, string(runes[:pos])) + m.renderFilterCursor(caret) + render(styles.Filter, after)
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)
	base := m.filterCursor.TextStyle.Copy().Inline(true)
	if m.filterCursor.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		return base.Inherit(styles.Cursor.Copy().Inline(true)).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
