package tree

import (
	"errors"
	"reflect"
	"testing"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/render"
)

type fixture struct {
	b     *Backend
	inbox *model.Parent
	trace *model.Checkbox
	quit  *model.Action
	quits int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{b: New()}
	root := model.NewParent("multiview")
	dispatch.Mount(nil, root, f.b.Root(root))
	f.inbox = model.NewParent("Inbox")
	f.trace = model.NewCheckbox("Trace", true)
	f.quit = model.NewAction("Quit", func() { f.quits++ })
	root.AddChild(f.inbox)
	root.AddChild(f.trace)
	root.AddChild(f.quit)
	return f
}

func (f *fixture) entry(t *testing.T, name string) Entry {
	t.Helper()
	entries, ok := f.b.Entries(f.b.RootID())
	if !ok {
		t.Fatalf("root has no entries")
	}
	for _, e := range entries {
		if e.Item.Name == name {
			return e
		}
	}
	t.Fatalf("no entry named %q in %v", name, entries)
	return Entry{}
}

func TestLinesDrawsConnectors(t *testing.T) {
	f := newFixture(t)
	want := []string{
		"▸ multiview (3)",
		"├─ ▸ Inbox",
		"├─ [x] Trace",
		"└─ • Quit",
	}
	if got := f.b.Lines(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tree:\n%q\nwant\n%q", got, want)
	}
}

func TestLabelShowsStatusMessage(t *testing.T) {
	f := newFixture(t)
	f.inbox.ReportError("scan failed")
	if got := f.entry(t, "Inbox").Label; got != "▸ Inbox  ✗ scan failed" {
		t.Fatalf("unexpected label %q", got)
	}
	f.inbox.ReportInfo("3 files")
	if got := f.entry(t, "Inbox").Label; got != "▸ Inbox  · 3 files" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestGlyphKeepsFirstCell(t *testing.T) {
	if got := Glyph(mv.Icon{Glyph: "✉x"}); got != "✉" {
		t.Fatalf("expected first rune, got %q", got)
	}
	if got := Glyph(mv.Icon{}); got != "" {
		t.Fatalf("expected empty glyph, got %q", got)
	}
}

func TestIconSizeIsSingleCell(t *testing.T) {
	f := newFixture(t)
	w, h := f.b.Root(nil).IconSize()
	if w != IconWidth || h != IconHeight {
		t.Fatalf("unexpected icon size %dx%d", w, h)
	}
}

func TestActivateTogglesAndRuns(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.b.Activate(f.entry(t, "Trace").ID, nil)
	if err != nil || outcome != mv.CallerRan {
		t.Fatalf("toggle: outcome %v err %v", outcome, err)
	}
	if f.trace.Checked() {
		t.Fatalf("expected trace unchecked after activate")
	}
	if f.entry(t, "Trace").Item.Checked {
		t.Fatalf("expected widget to mirror the model")
	}

	if _, err := f.b.Activate(f.entry(t, "Quit").ID, nil); err != nil {
		t.Fatalf("action: %v", err)
	}
	if f.quits != 1 {
		t.Fatalf("expected action to run once, ran %d", f.quits)
	}

	if _, err := f.b.Activate(f.entry(t, "Inbox").ID, nil); !errors.Is(err, render.ErrNotInteractive) {
		t.Fatalf("expected ErrNotInteractive, got %v", err)
	}
	if _, err := f.b.Activate("n999", nil); !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemovedChildLeavesTree(t *testing.T) {
	f := newFixture(t)
	id := f.entry(t, "Inbox").ID
	parent := f.b.Snapshot().Model.(*model.Parent)
	parent.RemoveChild(f.inbox)
	if _, ok := f.b.Find(id); ok {
		t.Fatalf("expected removed widget to be gone")
	}
	if f.b.Live() != 2 {
		t.Fatalf("expected 2 live widgets, got %d", f.b.Live())
	}
}

func TestRemovingBelowRemovedWidgetIsNoop(t *testing.T) {
	b := New()
	root := model.NewParent("multiview")
	rootNode := b.Root(root)
	inbox := model.NewParent("Inbox")
	leaf := model.NewAction("Run now", nil)
	inboxNode := rootNode.AddChild(inbox).(mv.ParentView)
	inboxNode.AddChild(leaf)

	rootNode.RemoveChild(inbox)
	inboxNode.RemoveChild(leaf)
	if b.Live() != 1 {
		t.Fatalf("expected only the root widget, got %d", b.Live())
	}
}
