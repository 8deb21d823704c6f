package ui

import (
	"fmt"
	"time"

	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/render/tree"
	"github.com/atomicstack/multiview/internal/ui/command"
	uistate "github.com/atomicstack/multiview/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

type changedMsg struct{}

type tickMsg time.Time

func waitForChanges(b *tree.Backend) tea.Cmd {
	return func() tea.Msg {
		<-b.Changes()
		return changedMsg{}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) handleChangedMsg(tea.Msg) tea.Cmd {
	m.refreshLevels()
	if m.tree == nil {
		return nil
	}
	return waitForChanges(m.tree)
}

func (m *Model) handleTickMsg(tea.Msg) tea.Cmd {
	m.refreshLevels()
	if m.refresh <= 0 {
		return nil
	}
	return tickEvery(m.refresh)
}

func (m *Model) handleResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(command.ResultMsg)
	if !ok {
		return nil
	}
	m.refreshLevels()
	if res.Err != nil {
		m.errMsg = res.Err.Error()
		return nil
	}
	m.errMsg = ""
	if len(res.Outcomes) == 1 && res.Outcomes[0] != mv.CallerRan {
		m.setInfo(fmt.Sprintf("Started %s", res.Label))
		return nil
	}
	m.setInfo(fmt.Sprintf("Activated %s", res.Label))
	return nil
}

// refreshLevels re-reads every level on the stack from the tree. A level
// whose widget went away is closed together with everything above it.
func (m *Model) refreshLevels() {
	m.generation++
	if m.tree == nil {
		return
	}
	dropped := 0
	for i, lvl := range m.stack {
		entries, ok := m.tree.Entries(lvl.ID)
		if !ok && i > 0 {
			dropped = len(m.stack) - i
			m.stack = m.stack[:i]
			m.setInfo(fmt.Sprintf("%s went away", lvl.Title))
			break
		}
		lvl.UpdateItems(itemsFromEntries(entries))
		m.syncViewport(lvl)
	}
	events.UI.Refresh(len(m.stack), dropped)
}

func itemsFromEntries(entries []tree.Entry) []uistate.Item {
	items := make([]uistate.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, uistate.Item{
			ID:       e.ID,
			Name:     e.Item.Name,
			Label:    e.Label,
			Kind:     kindOf(e),
			Checked:  e.Item.Checked,
			Accented: e.Item.Accented,
			Alert:    e.Item.Status == mv.StatusError || e.Item.Status == mv.StatusWarning,
		})
	}
	return items
}

func kindOf(e tree.Entry) uistate.Kind {
	switch {
	case e.Item.Checkable:
		return uistate.KindCheckbox
	case e.Item.Action:
		return uistate.KindAction
	case e.Item.Parent:
		return uistate.KindParent
	default:
		return uistate.KindPlain
	}
}
