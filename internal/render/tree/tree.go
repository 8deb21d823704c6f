// Package tree is the window-tree rendering backend: every model is a row
// in an indented tree, icons are single-cell glyphs.
package tree

import (
	"strconv"
	"strings"

	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/render"
)

// Icon cell size the tree draws.
const (
	IconWidth  = 1
	IconHeight = 1
)

// Backend is the window-tree front end.
type Backend struct {
	*render.Backend
}

// New returns an empty tree backend.
func New(opts ...render.Option) *Backend {
	opts = append([]render.Option{render.WithIconSize(IconWidth, IconHeight)}, opts...)
	return &Backend{Backend: render.New("tree", opts...)}
}

// Entry is one navigable row.
type Entry struct {
	ID    string
	Label string
	Item  render.Item
}

// Entries returns the rows below the widget with id, in child order.
func (b *Backend) Entries(id string) ([]Entry, bool) {
	item, ok := b.Find(id)
	if !ok {
		return nil, false
	}
	entries := make([]Entry, 0, len(item.Children))
	for _, child := range item.Children {
		entries = append(entries, Entry{ID: child.ID, Label: Label(child), Item: child})
	}
	return entries, true
}

// RootID returns the id of the root widget.
func (b *Backend) RootID() string {
	return b.Snapshot().ID
}

// Label renders a row's text without styling.
func Label(it render.Item) string {
	var sb strings.Builder
	switch {
	case it.Checkable && it.Checked:
		sb.WriteString("[x] ")
	case it.Checkable:
		sb.WriteString("[ ] ")
	case it.Parent:
		sb.WriteString("▸ ")
	case it.Action:
		sb.WriteString("• ")
	default:
		sb.WriteString("  ")
	}
	if glyph := Glyph(it.Icon); glyph != "" {
		sb.WriteString(glyph)
		sb.WriteByte(' ')
	}
	sb.WriteString(it.Name)
	if it.Parent && len(it.Children) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(len(it.Children)))
		sb.WriteByte(')')
	}
	if it.Message != "" {
		sb.WriteString("  ")
		sb.WriteString(statusMarker(it.Status))
		sb.WriteString(it.Message)
	}
	return sb.String()
}

// Glyph returns the first cell of the icon glyph.
func Glyph(icon mv.Icon) string {
	for _, r := range icon.Glyph {
		return string(r)
	}
	return ""
}

func statusMarker(s mv.Status) string {
	switch s {
	case mv.StatusError:
		return "✗ "
	case mv.StatusWarning:
		return "! "
	case mv.StatusInfo:
		return "· "
	default:
		return ""
	}
}

// Lines draws the whole tree with box-drawing connectors.
func (b *Backend) Lines() []string {
	root := b.Snapshot()
	lines := []string{Label(root)}
	walk(root.Children, "", &lines)
	return lines
}

func walk(items []render.Item, prefix string, lines *[]string) {
	for i, it := range items {
		connector, next := "├─ ", "│  "
		if i == len(items)-1 {
			connector, next = "└─ ", "   "
		}
		*lines = append(*lines, prefix+connector+Label(it))
		walk(it.Children, prefix+next, lines)
	}
}
