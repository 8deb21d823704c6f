// Package dispatch fans every view call out to one concrete view per
// rendering backend, so a model tree drives several front ends at once.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/metrics"
	"github.com/atomicstack/multiview/internal/mv"
)

// View is a composite over an ordered member list, one member per backend.
// It satisfies ParentView and CheckboxView; which capabilities are usable
// depends on what the members support.
type View struct {
	submitter mv.Submitter
	model     mv.Model

	mu       sync.Mutex
	members  []mv.View
	children map[mv.Model]*View
}

var (
	_ mv.ParentView   = (*View)(nil)
	_ mv.CheckboxView = (*View)(nil)
)

// New returns a dispatch view over members. A nil submitter runs long
// initialisation inline.
func New(submitter mv.Submitter, members ...mv.View) *View {
	if submitter == nil {
		submitter = mv.Inline
	}
	return &View{
		submitter: submitter,
		members:   append([]mv.View(nil), members...),
		children:  make(map[mv.Model]*View),
	}
}

// Mount builds the root dispatch over views, attaches it to root and
// schedules root's Run when it is long-running.
func Mount(submitter mv.Submitter, root mv.Model, views ...mv.View) *View {
	if root == nil {
		panic(mv.Invariant("dispatch.Mount", "nil root model"))
	}
	d := New(submitter, views...)
	d.model = root
	attach(root, d)
	if root.LongRunningInit() {
		d.submitter.Submit(root.Name()+".run", root.Run)
	}
	return d
}

// Members returns a copy of the member list in registration order.
func (d *View) Members() []mv.View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]mv.View(nil), d.members...)
}

// Model returns the model this view serves, nil for an unmounted root.
func (d *View) Model() mv.Model {
	return d.model
}

// Child returns the dispatch view attached to child, if child was added here.
func (d *View) Child(child mv.Model) (*View, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.children[child]
	return v, ok
}

// each calls fn for every member in order. A member panic is logged and
// counted and the loop continues; invariant panics propagate.
func (d *View) each(op string, fn func(m mv.View)) {
	for i, m := range d.Members() {
		guard(op, i, func() { fn(m) })
	}
}

func guard(op string, member int, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if mv.IsInvariant(r) {
			panic(r)
		}
		metrics.FanoutFailures.WithLabelValues(op).Inc()
		events.View.MemberPanic(op, member, r)
		logging.Logger().Error("view member failed", "op", op, "member", member, "panic", fmt.Sprint(r))
	}()
	fn()
}

func (d *View) SetName(name string) {
	d.each("set-name", func(m mv.View) { m.SetName(name) })
}

// SetIcon applies icon to every member. A member that advertises a
// different icon size is warned about and still receives the icon.
func (d *View) SetIcon(icon mv.Icon) {
	for i, m := range d.Members() {
		if sizer, ok := m.(mv.IconSizer); ok && !icon.IsZero() {
			w, h := sizer.IconSize()
			if w != icon.Width || h != icon.Height {
				metrics.IconMismatches.Inc()
				events.View.IconMismatch(icon.Name, i, w, h, icon.Width, icon.Height)
				logging.Warn("icon size mismatch",
					"icon", icon.Name,
					"member", i,
					"want", fmt.Sprintf("%dx%d", w, h),
					"got", fmt.Sprintf("%dx%d", icon.Width, icon.Height),
				)
			}
		}
		guard("set-icon", i, func() { m.SetIcon(icon) })
	}
}

func (d *View) AddAccent(accent mv.Accent) {
	d.each("add-accent", func(m mv.View) { m.AddAccent(accent) })
}

func (d *View) RemoveAccent(accent mv.Accent) {
	d.each("remove-accent", func(m mv.View) { m.RemoveAccent(accent) })
}

// Pulse adds then removes accent on every member.
func (d *View) Pulse(accent mv.Accent) {
	d.AddAccent(accent)
	d.RemoveAccent(accent)
}

func (d *View) Error(msg string) {
	d.each("error", func(m mv.View) { m.Error(msg) })
}

func (d *View) Warning(msg string) {
	d.each("warning", func(m mv.View) { m.Warning(msg) })
}

func (d *View) Info(msg string) {
	d.each("info", func(m mv.View) { m.Info(msg) })
}

func (d *View) None() {
	d.each("none", func(m mv.View) { m.None() })
}

// SetChecked fans out to members; every member must be a CheckboxView.
func (d *View) SetChecked(checked bool) {
	d.each("set-checked", func(m mv.View) {
		cv, ok := m.(mv.CheckboxView)
		if !ok {
			panic(mv.Invariant("dispatch.SetChecked", "member %T is not a checkbox view", m))
		}
		cv.SetChecked(checked)
	})
}

// NotifyMyParent forwards to the first member only, so the parent model
// hears about the change once. For long-running models the forwarding
// runs on the pool.
func (d *View) NotifyMyParent() {
	members := d.Members()
	if len(members) == 0 {
		return
	}
	first := members[0]
	forward := func() { guard("notify-parent", 0, first.NotifyMyParent) }
	if d.model != nil && d.model.LongRunningInit() {
		d.submitter.Submit(d.model.Name()+".notify", forward)
		return
	}
	forward()
}

// AddChild asks every member for a child view, wraps them in a new
// dispatch view and attaches that to model through its capability setter.
func (d *View) AddChild(model mv.Model) mv.View {
	if model == nil {
		panic(mv.Invariant("dispatch.AddChild", "nil model"))
	}
	d.mu.Lock()
	if _, exists := d.children[model]; exists {
		d.mu.Unlock()
		panic(mv.Invariant("dispatch.AddChild", "%q is already a child", model.Name()))
	}
	members := append([]mv.View(nil), d.members...)
	d.mu.Unlock()

	child := New(d.submitter)
	child.model = model
	for i, m := range members {
		pv, ok := m.(mv.ParentView)
		if !ok {
			d.rollback(model, members[:i])
			panic(mv.Invariant("dispatch.AddChild", "member %d (%T) is not a parent view", i, m))
		}
		cv, err := addTo(pv, model)
		if err != nil || cv == nil {
			d.rollback(model, members[:i])
			panic(mv.Invariant("dispatch.AddChild", "member %d produced no view for %q: %v", i, model.Name(), err))
		}
		child.members = append(child.members, cv)
	}

	d.mu.Lock()
	d.children[model] = child
	d.mu.Unlock()

	d.attachOrRollback(model, child, members)
	events.View.AddChild(d.name(), model.Name(), len(child.members))
	if model.LongRunningInit() {
		d.submitter.Submit(model.Name()+".run", model.Run)
	}
	return child
}

func addTo(pv mv.ParentView, model mv.Model) (v mv.View, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return pv.AddChild(model), nil
}

// attachOrRollback hands child to model. When the model refuses it, the
// widgets created on every member are removed again and the panic goes on.
func (d *View) attachOrRollback(model mv.Model, child *View, members []mv.View) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		d.mu.Lock()
		delete(d.children, model)
		d.mu.Unlock()
		d.rollback(model, members)
		panic(r)
	}()
	attach(model, child)
}

// rollback removes widgets already created for model so a failed AddChild
// leaves no half-built row behind.
func (d *View) rollback(model mv.Model, created []mv.View) {
	for i, m := range created {
		pv := m.(mv.ParentView)
		guard("rollback", i, func() { pv.RemoveChild(model) })
	}
}

// RemoveChild stops model, removes its widget from every member and forgets
// its dispatch view. Removing an unknown model panics.
func (d *View) RemoveChild(model mv.Model) {
	d.mu.Lock()
	_, ok := d.children[model]
	if !ok {
		d.mu.Unlock()
		name := "<nil>"
		if model != nil {
			name = model.Name()
		}
		panic(mv.Invariant("dispatch.RemoveChild", "%q is not a child of %q", name, d.name()))
	}
	delete(d.children, model)
	d.mu.Unlock()

	model.Stop()
	members := d.Members()
	for i, m := range members {
		pv, ok := m.(mv.ParentView)
		if !ok {
			continue
		}
		guard("remove-child", i, func() { pv.RemoveChild(model) })
	}
	events.View.RemoveChild(d.name(), model.Name(), len(members))
}

func (d *View) name() string {
	if d.model == nil {
		return ""
	}
	return d.model.Name()
}

// attach hands v to model through exactly one setter, preferring the
// richest capability.
func attach(model mv.Model, v *View) {
	switch m := model.(type) {
	case mv.ParentModel:
		m.SetParentView(v)
	case mv.CheckboxModel:
		m.SetCheckboxView(v)
	case mv.ActionModel:
		m.SetActionView(v)
	case mv.ViewSetter:
		m.SetView(v)
	default:
		panic(mv.Invariant("dispatch.attach", "%q (%T) accepts no view", model.Name(), model))
	}
}
