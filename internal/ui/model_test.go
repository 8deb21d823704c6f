package ui

import (
	"strings"
	"testing"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/pool"
	"github.com/atomicstack/multiview/internal/render/menu"
	"github.com/atomicstack/multiview/internal/render/tree"
	tea "github.com/charmbracelet/bubbletea"
)

type fixture struct {
	root  *model.Parent
	inbox *model.Parent
	csv   *model.Checkbox
	trace *model.Checkbox
	quit  *model.Action
	quits int
	tree  *tree.Backend
	menu  *menu.Backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{tree: tree.New(), menu: menu.New()}
	f.root = model.NewParent("multiview")
	dispatch.Mount(nil, f.root, f.tree.Root(f.root), f.menu.Root(f.root))
	f.inbox = model.NewParent("Inbox")
	f.csv = model.NewCheckbox(".csv", true)
	f.trace = model.NewCheckbox("Trace", false)
	f.quit = model.NewAction("Quit", func() { f.quits++ })
	f.root.AddChild(f.inbox)
	f.inbox.AddChild(f.csv)
	f.root.AddChild(f.trace)
	f.root.AddChild(f.quit)
	return f
}

func (f *fixture) harness(opts Options) *Harness {
	opts.Tree = f.tree
	opts.Menu = f.menu
	return NewHarness(NewModel(opts))
}

func names(l *level) []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.Name)
	}
	return out
}

func TestRootLevelListsChildren(t *testing.T) {
	f := newFixture(t)
	h := f.harness(Options{})
	current := h.Model().currentLevel()
	if got := strings.Join(names(current), ","); got != "Inbox,Trace,Quit" {
		t.Fatalf("unexpected root items %q", got)
	}
	if current.Model != f.root {
		t.Fatalf("expected root level to carry the root model")
	}
	view := h.View()
	for _, want := range []string{"multiview", "▸ Inbox (1)", "[ ] Trace", "• Quit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestHandlerForUnknownMessage(t *testing.T) {
	m := NewModel(Options{})
	if m.handlerFor(struct{}{}) != nil {
		t.Fatalf("expected no handler for unknown message")
	}
	if m.handlerFor(&tea.WindowSizeMsg{}) == nil {
		t.Fatalf("expected pointer messages to resolve to their handler")
	}
	if m.header() != "" {
		t.Fatalf("expected empty header without a tree, got %q", m.header())
	}
}

func TestWindowSizeRespectsFixedDimensions(t *testing.T) {
	f := newFixture(t)
	h := f.harness(Options{Width: 50})
	h.Send(tea.WindowSizeMsg{Width: 120, Height: 30})
	if h.Model().width != 50 || h.Model().height != 30 {
		t.Fatalf("unexpected size %dx%d", h.Model().width, h.Model().height)
	}
}

func TestResultMessages(t *testing.T) {
	f := newFixture(t)
	queued := mv.SubmitterFunc(func(string, func()) mv.Outcome { return mv.Queued })
	h := f.harness(Options{Submitter: queued})
	h.Press(tea.KeyDown)
	h.Press(tea.KeyEnter)
	if f.trace.Checked() {
		t.Fatalf("expected the queued toggle not to have run yet")
	}
	if got := h.Model().currentInfo(); got != "Started Trace" {
		t.Fatalf("unexpected info %q", got)
	}
}

func TestFooterShowsRunningTasks(t *testing.T) {
	f := newFixture(t)
	tracker := pool.NewTracker()
	h := f.harness(Options{Tracker: tracker, Footer: true})
	if view := h.View(); !strings.Contains(view, "idle · 0 done") {
		t.Fatalf("expected idle footer:\n%s", view)
	}
	tracker.Progress("t1", "Inbox.cycle", 0)
	view := h.View()
	if !strings.Contains(view, "running: Inbox.cycle") {
		t.Fatalf("expected running task in footer:\n%s", view)
	}
	if !strings.Contains(view, "enter") || !strings.Contains(view, "mark") {
		t.Fatalf("expected key help in footer:\n%s", view)
	}
}
