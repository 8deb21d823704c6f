package render_test

import (
	"strings"
	"testing"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/render/menu"
	"github.com/atomicstack/multiview/internal/render/tree"
	"github.com/atomicstack/multiview/internal/testutil"
)

func TestBackendsRenderSameTree(t *testing.T) {
	tb, mb := tree.New(), menu.New()
	root := model.NewParent("multiview")
	dispatch.Mount(nil, root, tb.Root(root), mb.Root(root))

	inbox := model.NewParent("Inbox")
	root.AddChild(inbox)
	inbox.AddChild(model.NewCheckbox("a.csv", false))
	inbox.AddChild(model.NewCheckbox("b.csv", true))
	inbox.ReportInfo("2 files")
	level := model.NewParent("Log level")
	root.AddChild(level)
	level.AddChild(model.NewCheckbox("info", true))
	root.AddChild(model.NewAction("Quit", func() {}))

	if tb.Live() != mb.Live() {
		t.Fatalf("backends disagree on widget count: tree=%d menu=%d", tb.Live(), mb.Live())
	}
	testutil.AssertGolden(t, "tree_demo.golden", strings.Join(tb.Lines(), "\n")+"\n")
	testutil.AssertGolden(t, "menu_demo.golden", strings.Join(mb.Render(nil, 0), "\n")+"\n")
}
