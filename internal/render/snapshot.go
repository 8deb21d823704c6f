package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/atomicstack/multiview/internal/mv"
)

// ErrNotFound is returned when an id or model has no widget.
var ErrNotFound = errors.New("widget not found")

// ErrNotInteractive is returned by Activate for widgets with nothing to do.
var ErrNotInteractive = errors.New("widget is not interactive")

// Item is an immutable copy of a widget and its subtree.
type Item struct {
	ID        string
	Name      string
	Path      string
	Depth     int
	Model     mv.Model
	Icon      mv.Icon
	Status    mv.Status
	Message   string
	Accented  bool
	Parent    bool
	Action    bool
	Checkable bool
	Checked   bool
	Children  []Item
}

// Snapshot copies the whole tree.
func (b *Backend) Snapshot() Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.root.snapshotLocked(0, b.now())
}

// Find copies the subtree rooted at the widget with id.
func (b *Backend) Find(id string) (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.root.findLocked(func(n *Node) bool { return n.id == id })
	if n == nil {
		return Item{}, false
	}
	return n.snapshotLocked(n.depthLocked(), b.now()), true
}

// FindModel copies the subtree rendering model.
func (b *Backend) FindModel(model mv.Model) (Item, bool) {
	if model == nil {
		return Item{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.root.findLocked(func(n *Node) bool { return n.model == model })
	if n == nil {
		return Item{}, false
	}
	return n.snapshotLocked(n.depthLocked(), b.now()), true
}

// Activate is the user interacting with a widget: checkboxes toggle and
// actions run. The call into the model goes through submit so the caller
// never blocks on model code.
func (b *Backend) Activate(id string, submit mv.Submitter) (mv.Outcome, error) {
	item, ok := b.Find(id)
	if !ok {
		return mv.CallerRan, fmt.Errorf("activate %s: %w", id, ErrNotFound)
	}
	if submit == nil {
		submit = mv.Inline
	}
	switch m := item.Model.(type) {
	case mv.CheckboxModel:
		next := !item.Checked
		return submit.Submit(m.Name()+".toggle", func() { m.SetChecked(next) }), nil
	case mv.ActionModel:
		return submit.Submit(m.Name()+".action", m.Action), nil
	}
	return mv.CallerRan, fmt.Errorf("activate %s: %w", item.Path, ErrNotInteractive)
}

func (n *Node) findLocked(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.findLocked(match); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) depthLocked() int {
	depth := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

func (n *Node) snapshotLocked(depth int, now time.Time) Item {
	item := Item{
		ID:        n.id,
		Name:      n.name,
		Path:      n.pathLocked(),
		Depth:     depth,
		Model:     n.model,
		Icon:      n.icon,
		Status:    n.status,
		Message:   n.message,
		Accented:  len(n.accents) > 0 || (!n.pulsedAt.IsZero() && now.Sub(n.pulsedAt) < PulseWindow),
		Parent:    n.parentNode || n.parent == nil,
		Action:    n.action,
		Checkable: n.checkable,
		Checked:   n.checked,
	}
	for _, c := range n.children {
		item.Children = append(item.Children, c.snapshotLocked(depth+1, now))
	}
	return item
}
