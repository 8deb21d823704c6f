package model

import (
	"sync"

	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/mv"
)

// Parent is a model with an ordered list of children. Every child added is
// removed exactly once; Stop removes whatever is left.
type Parent struct {
	Base

	cmu      sync.Mutex
	pview    mv.ParentView
	children []mv.Model

	onAttach func()
	onChange func(child mv.Model)
}

// NewParent returns a Parent named name.
func NewParent(name string) *Parent {
	return &Parent{Base: Base{name: name}}
}

// OnAttach runs fn once the parent view is attached, which is the first
// moment children can be added.
func (p *Parent) OnAttach(fn func()) {
	p.cmu.Lock()
	p.onAttach = fn
	p.cmu.Unlock()
}

// OnChildChanged runs fn after every ChildHasChanged.
func (p *Parent) OnChildChanged(fn func(child mv.Model)) {
	p.cmu.Lock()
	p.onChange = fn
	p.cmu.Unlock()
}

func (p *Parent) SetParentView(v mv.ParentView) {
	if v == nil {
		panic(mv.Invariant("model.SetParentView", "nil view attached to %q", p.Name()))
	}
	p.Base.SetView(v)
	p.cmu.Lock()
	p.pview = v
	hook := p.onAttach
	p.cmu.Unlock()
	if hook != nil {
		hook()
	}
}

// ParentView returns the attached parent view.
func (p *Parent) ParentView() mv.ParentView {
	p.cmu.Lock()
	defer p.cmu.Unlock()
	return p.pview
}

// Attached reports whether the parent view is set.
func (p *Parent) Attached() bool {
	return p.ParentView() != nil
}

// AddChild attaches child below this parent and returns the child's view.
func (p *Parent) AddChild(child mv.Model) mv.View {
	if child == nil {
		panic(mv.Invariant("model.AddChild", "nil child added to %q", p.Name()))
	}
	p.cmu.Lock()
	view := p.pview
	if view == nil {
		p.cmu.Unlock()
		panic(mv.Invariant("model.AddChild", "%q has no view; attach it before adding %q", p.name, child.Name()))
	}
	for _, existing := range p.children {
		if existing == child {
			p.cmu.Unlock()
			panic(mv.Invariant("model.AddChild", "%q already has child %q", p.name, child.Name()))
		}
	}
	p.cmu.Unlock()
	v := view.AddChild(child)
	p.cmu.Lock()
	p.children = append(p.children, child)
	p.cmu.Unlock()
	return v
}

// RemoveChild detaches child. Removing a child that is not present panics.
func (p *Parent) RemoveChild(child mv.Model) {
	p.cmu.Lock()
	idx := -1
	for i, existing := range p.children {
		if existing == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.cmu.Unlock()
		name := "<nil>"
		if child != nil {
			name = child.Name()
		}
		panic(mv.Invariant("model.RemoveChild", "%q is not a child of %q", name, p.name))
	}
	p.children = append(p.children[:idx:idx], p.children[idx+1:]...)
	view := p.pview
	p.cmu.Unlock()
	view.RemoveChild(child)
}

// RemoveAll removes every child, newest first.
func (p *Parent) RemoveAll() {
	for {
		p.cmu.Lock()
		n := len(p.children)
		if n == 0 {
			p.cmu.Unlock()
			return
		}
		last := p.children[n-1]
		p.cmu.Unlock()
		p.RemoveChild(last)
	}
}

// Children returns a copy of the child list.
func (p *Parent) Children() []mv.Model {
	p.cmu.Lock()
	defer p.cmu.Unlock()
	return append([]mv.Model(nil), p.children...)
}

// HasChild reports whether child is currently attached here.
func (p *Parent) HasChild(child mv.Model) bool {
	p.cmu.Lock()
	defer p.cmu.Unlock()
	for _, existing := range p.children {
		if existing == child {
			return true
		}
	}
	return false
}

// ChildHasChanged pulses the changed accent on this parent and runs the
// OnChildChanged hook.
func (p *Parent) ChildHasChanged(child mv.Model) {
	name := ""
	if child != nil {
		name = child.Name()
	}
	events.Model.ChildChanged(p.Name(), name)
	view := p.View()
	if view != nil {
		view.AddAccent(mv.AccentChanged)
	}
	p.cmu.Lock()
	hook := p.onChange
	p.cmu.Unlock()
	if hook != nil {
		hook(child)
	}
	if view != nil {
		view.RemoveAccent(mv.AccentChanged)
	}
}

// Stop removes every remaining child.
func (p *Parent) Stop() {
	p.RemoveAll()
}
