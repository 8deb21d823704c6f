// Package render holds the widget tree shared by the concrete rendering
// backends. A Backend owns one tree of Nodes guarded by its own mutex; each
// Node is the concrete view of exactly one model. Backends publish a
// coalesced change signal that front ends wait on before redrawing.
package render

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/multiview/internal/mv"
)

// PulseWindow is how long a pulsed accent stays visible in snapshots.
const PulseWindow = 750 * time.Millisecond

// Event describes one call a backend received.
type Event struct {
	Backend string
	Op      string
	Path    string
	Arg     string
}

// Option customises a Backend.
type Option func(*Backend)

// WithIconSize sets the icon size the backend expects.
func WithIconSize(width, height int) Option {
	return func(b *Backend) {
		b.iconW, b.iconH = width, height
	}
}

// WithObserver receives every call after it is applied.
func WithObserver(fn func(Event)) Option {
	return func(b *Backend) {
		b.observer = fn
	}
}

// WithClock replaces time.Now for accent pulses.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// Backend is one rendering front end's widget tree.
type Backend struct {
	name     string
	iconW    int
	iconH    int
	observer func(Event)
	now      func() time.Time

	mu      sync.Mutex
	root    *Node
	nextID  int
	live    int
	changes chan struct{}
}

// New returns an empty backend called name.
func New(name string, opts ...Option) *Backend {
	b := &Backend{
		name:    name,
		now:     time.Now,
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.root = b.newNodeLocked(nil, nil, name)
	return b
}

// Name returns the backend label.
func (b *Backend) Name() string {
	return b.name
}

// Root returns the root node bound to model. Binding a second, different
// model panics.
func (b *Backend) Root(model mv.Model) *Node {
	b.mu.Lock()
	root := b.root
	switch {
	case root.model == nil && model != nil:
		root.model = model
		root.name = model.Name()
	case model != nil && root.model != model:
		b.mu.Unlock()
		panic(mv.Invariant("render.Root", "backend %q already mounted %q", b.name, root.name))
	}
	b.mu.Unlock()
	b.emit("mount", root, "")
	return root
}

// Changes signals after every mutation. Signals coalesce: one pending
// receive covers any number of changes.
func (b *Backend) Changes() <-chan struct{} {
	return b.changes
}

// Live returns the number of widgets below the root.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live
}

func (b *Backend) newNodeLocked(parent *Node, model mv.Model, name string) *Node {
	b.nextID++
	n := &Node{
		b:       b,
		id:      fmt.Sprintf("n%d", b.nextID),
		parent:  parent,
		model:   model,
		name:    name,
		accents: make(map[mv.Accent]int),
	}
	if model != nil {
		_, n.parentNode = model.(mv.ParentModel)
		_, n.action = model.(mv.ActionModel)
		if cb, ok := model.(mv.CheckboxModel); ok {
			n.checkable = true
			n.checked = cb.Checked()
		}
	}
	return n
}

func (b *Backend) emit(op string, n *Node, arg string) {
	select {
	case b.changes <- struct{}{}:
	default:
	}
	if b.observer != nil {
		b.observer(Event{Backend: b.name, Op: op, Path: n.Path(), Arg: arg})
	}
}

// Node is a widget: the concrete view of one model in one backend.
type Node struct {
	b      *Backend
	id     string
	parent *Node
	model  mv.Model

	name       string
	icon       mv.Icon
	accents    map[mv.Accent]int
	pulsedAt   time.Time
	status     mv.Status
	message    string
	parentNode bool
	action     bool
	checkable  bool
	checked    bool
	removed    bool
	children   []*Node
}

var (
	_ mv.ParentView   = (*Node)(nil)
	_ mv.CheckboxView = (*Node)(nil)
	_ mv.IconSizer    = (*Node)(nil)
)

// ID is unique within the backend.
func (n *Node) ID() string {
	return n.id
}

// Model returns the model this widget renders.
func (n *Node) Model() mv.Model {
	return n.model
}

// Path joins the names from the root down to n.
func (n *Node) Path() string {
	n.b.mu.Lock()
	defer n.b.mu.Unlock()
	return n.pathLocked()
}

func (n *Node) pathLocked() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// update applies fn under the backend lock unless n was removed.
func (n *Node) update(op, arg string, fn func()) {
	n.b.mu.Lock()
	if n.removed {
		n.b.mu.Unlock()
		return
	}
	fn()
	n.b.mu.Unlock()
	n.b.emit(op, n, arg)
}

func (n *Node) SetName(name string) {
	n.update("set-name", name, func() { n.name = name })
}

func (n *Node) SetIcon(icon mv.Icon) {
	n.update("set-icon", icon.Name, func() { n.icon = icon })
}

func (n *Node) IconSize() (int, int) {
	return n.b.iconW, n.b.iconH
}

func (n *Node) AddAccent(accent mv.Accent) {
	n.update("add-accent", string(accent), func() {
		n.accents[accent]++
		n.pulsedAt = n.b.now()
	})
}

func (n *Node) RemoveAccent(accent mv.Accent) {
	n.update("remove-accent", string(accent), func() {
		if n.accents[accent] <= 1 {
			delete(n.accents, accent)
			return
		}
		n.accents[accent]--
	})
}

func (n *Node) setStatus(op string, status mv.Status, msg string) {
	n.update(op, msg, func() {
		n.status = status
		n.message = msg
	})
}

func (n *Node) Error(msg string)   { n.setStatus("error", mv.StatusError, msg) }
func (n *Node) Warning(msg string) { n.setStatus("warning", mv.StatusWarning, msg) }
func (n *Node) Info(msg string)    { n.setStatus("info", mv.StatusInfo, msg) }
func (n *Node) None()              { n.setStatus("none", mv.StatusNone, "") }

func (n *Node) SetChecked(checked bool) {
	n.update("set-checked", fmt.Sprint(checked), func() {
		n.checkable = true
		n.checked = checked
	})
}

// NotifyMyParent tells the parent widget's model that n's model changed.
// The call into the model happens without the backend lock held.
func (n *Node) NotifyMyParent() {
	n.b.mu.Lock()
	parent := n.parent
	removed := n.removed
	n.b.mu.Unlock()
	n.b.emit("notify-parent", n, "")
	if removed || parent == nil || parent.model == nil {
		return
	}
	if pm, ok := parent.model.(mv.ParentModel); ok {
		pm.ChildHasChanged(n.model)
	}
}

// AddChild creates the widget for model below n.
func (n *Node) AddChild(model mv.Model) mv.View {
	if model == nil {
		panic(mv.Invariant("render.AddChild", "nil model"))
	}
	name := model.Name()
	n.b.mu.Lock()
	if n.removed {
		n.b.mu.Unlock()
		panic(mv.Invariant("render.AddChild", "%q added below removed widget %q", name, n.name))
	}
	for _, c := range n.children {
		if c.model == model {
			n.b.mu.Unlock()
			panic(mv.Invariant("render.AddChild", "%q already has a widget below %q", name, n.name))
		}
	}
	child := n.b.newNodeLocked(n, model, name)
	n.children = append(n.children, child)
	n.b.live++
	n.b.mu.Unlock()
	n.b.emit("add-child", child, name)
	return child
}

// RemoveChild drops the widget for model. A missing widget panics unless
// n itself was removed, which already took every descendant with it.
func (n *Node) RemoveChild(model mv.Model) {
	n.b.mu.Lock()
	if n.removed {
		n.b.mu.Unlock()
		return
	}
	idx := -1
	for i, c := range n.children {
		if c.model == model {
			idx = i
			break
		}
	}
	if idx < 0 {
		n.b.mu.Unlock()
		panic(mv.Invariant("render.RemoveChild", "no widget for model below %q", n.name))
	}
	child := n.children[idx]
	n.children = append(n.children[:idx:idx], n.children[idx+1:]...)
	n.b.live -= child.markRemovedLocked()
	path := child.pathLocked()
	n.b.mu.Unlock()
	n.b.emit("remove-child", n, path)
}

// markRemovedLocked flags child and any leftover descendants, returning
// how many widgets went away.
func (n *Node) markRemovedLocked() int {
	n.removed = true
	count := 1
	for _, c := range n.children {
		count += c.markRemovedLocked()
	}
	n.children = nil
	return count
}
