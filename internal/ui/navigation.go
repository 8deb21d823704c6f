package ui

import (
	"fmt"

	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/ui/command"
	uistate "github.com/atomicstack/multiview/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleEscapeKey() tea.Cmd {
	current := m.currentLevel()
	if current == nil || len(m.stack) <= 1 {
		return tea.Quit
	}
	events.UI.Back(current.ID)
	m.stack = m.stack[:len(m.stack)-1]
	parent := m.currentLevel()
	if idx := parent.IndexOf(current.ID); idx >= 0 {
		parent.Cursor = idx
	} else if parent.LastCursor >= 0 && parent.LastCursor < len(parent.Items) {
		parent.Cursor = parent.LastCursor
	}
	parent.LastCursor = -1
	m.syncViewport(parent)
	m.errMsg = ""
	m.forceClearInfo()
	return nil
}

func (m *Model) handleEnterKey() tea.Cmd {
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	if marked := current.MarkedItems(); len(marked) > 0 {
		current.ClearMarks()
		return m.activate(marked...)
	}
	item, ok := current.Current()
	if !ok {
		return nil
	}
	events.UI.Enter(current.ID, item.ID, item.Name, current.Filter)
	before := current.FilterCursorPos()
	current.SetFilter("", 0)
	m.noteFilterCursorChange(current, before)
	switch {
	case item.Kind == uistate.KindParent:
		m.openLevel(current, item)
		return nil
	case item.Interactive():
		return m.activate(item)
	}
	m.setInfo(fmt.Sprintf("%s has nothing to activate", item.Name))
	return nil
}

func (m *Model) openLevel(parent *level, item uistate.Item) {
	if m.tree == nil {
		return
	}
	entries, ok := m.tree.Entries(item.ID)
	if !ok {
		m.errMsg = fmt.Sprintf("%s is gone", item.Name)
		return
	}
	source := parent.Model
	if found, ok := m.tree.Find(item.ID); ok {
		source = found.Model
	}
	parent.LastCursor = parent.Cursor
	lvl := uistate.NewLevel(item.ID, item.Name, source, itemsFromEntries(entries))
	m.stack = append(m.stack, lvl)
	m.syncViewport(lvl)
	m.errMsg = ""
	m.forceClearInfo()
	if len(lvl.Items) == 0 {
		m.setInfo("No entries yet.")
	}
}

func (m *Model) activate(items ...uistate.Item) tea.Cmd {
	if m.tree == nil {
		return nil
	}
	reqs := make([]command.Request, 0, len(items))
	for _, item := range items {
		if item.Kind == uistate.KindCheckbox {
			events.UI.Toggle(item.ID, !item.Checked)
		}
		reqs = append(reqs, command.Request{ID: item.ID, Label: item.Name})
	}
	m.errMsg = ""
	return m.bus.Execute(m.tree, reqs...)
}

func (m *Model) toggleMark() {
	current := m.currentLevel()
	if current == nil {
		return
	}
	item, ok := current.Current()
	if !ok {
		return
	}
	if !current.ToggleCurrentMark() {
		m.setInfo(fmt.Sprintf("%s cannot be marked", item.Name))
		return
	}
	events.UI.Mark(current.ID, item.ID, current.IsMarked(item.ID))
}

func (m *Model) moveCursor(fn func(*level) bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	if fn(current) {
		events.UI.Cursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if key.Matches(keyMsg, m.keys.Mark) {
		m.toggleMark()
		return nil
	}
	if m.handleTextInput(keyMsg) {
		return nil
	}
	page := m.maxVisibleItems()
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Back):
		return m.handleEscapeKey()
	case key.Matches(keyMsg, m.keys.Enter):
		return m.handleEnterKey()
	case key.Matches(keyMsg, m.keys.Up):
		m.moveCursor(func(l *level) bool { return l.MoveCursor(-1, true) })
	case key.Matches(keyMsg, m.keys.Down):
		m.moveCursor(func(l *level) bool { return l.MoveCursor(1, true) })
	case key.Matches(keyMsg, m.keys.PageUp):
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageUp(page) })
	case key.Matches(keyMsg, m.keys.PageDown):
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageDown(page) })
	case key.Matches(keyMsg, m.keys.Home):
		m.moveCursor((*level).MoveCursorHome)
	case key.Matches(keyMsg, m.keys.End):
		m.moveCursor((*level).MoveCursorEnd)
	}
	return nil
}
