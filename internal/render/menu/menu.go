// Package menu is the tray-menu rendering backend. A parent renders as a
// popup menu of its children: checkmarks in the gutter, 16x16 icons, and
// submenu arrows or status text in the right-hand column.
package menu

import (
	"strings"

	"github.com/atomicstack/multiview/internal/format/table"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/render"
)

// Icon size tray menus are drawn for.
const (
	IconWidth  = 16
	IconHeight = 16
)

const separator = "─"

// Backend is the tray-menu front end.
type Backend struct {
	*render.Backend
}

// New returns an empty tray-menu backend.
func New(opts ...render.Option) *Backend {
	opts = append([]render.Option{render.WithIconSize(IconWidth, IconHeight)}, opts...)
	return &Backend{Backend: render.New("menu", opts...)}
}

// Title returns the popup title for model's submenu.
func (b *Backend) Title(model mv.Model) string {
	item, ok := b.FindModel(model)
	if !ok {
		return ""
	}
	return item.Name
}

// Render draws model's submenu clipped to width cells. A nil model draws
// the root menu.
func (b *Backend) Render(model mv.Model, width int) []string {
	var (
		item render.Item
		ok   bool
	)
	if model == nil {
		item, ok = b.Snapshot(), true
	} else {
		item, ok = b.FindModel(model)
	}
	if !ok {
		return []string{"(gone)"}
	}
	if len(item.Children) == 0 {
		return []string{"(empty)"}
	}
	return table.Fit(Rows(item.Children, width), width, "…")
}

// Rows formats items as aligned menu rows. Actions are separated from the
// entries above them by a rule.
func Rows(items []render.Item, width int) []string {
	rows := make([][]string, 0, len(items))
	sepAt := -1
	for i, it := range items {
		if it.Action && sepAt < 0 && i > 0 && !items[i-1].Action {
			sepAt = len(rows)
		}
		rows = append(rows, []string{gutter(it), icon(it), label(it), trailer(it)})
	}
	lines := table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignLeft, table.AlignLeft, table.AlignRight})
	if sepAt < 0 {
		return lines
	}
	rule := strings.Repeat(separator, ruleWidth(lines, width))
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:sepAt]...)
	out = append(out, rule)
	out = append(out, lines[sepAt:]...)
	return out
}

func gutter(it render.Item) string {
	switch {
	case it.Checkable && it.Checked:
		return "✓"
	case it.Accented:
		return "*"
	default:
		return " "
	}
}

func icon(it render.Item) string {
	if it.Icon.Glyph == "" {
		return " "
	}
	return it.Icon.Glyph
}

func label(it render.Item) string {
	if it.Action {
		return it.Name + "…"
	}
	return it.Name
}

func trailer(it render.Item) string {
	switch {
	case it.Status == mv.StatusError:
		return "✗ " + it.Message
	case it.Status == mv.StatusWarning:
		return "! " + it.Message
	case it.Parent:
		return "▸"
	case it.Message != "":
		return it.Message
	default:
		return ""
	}
}

func ruleWidth(lines []string, width int) int {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	if width > 0 && w > width {
		w = width
	}
	if w < 1 {
		w = 1
	}
	return w
}
