package model

import (
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/mv"
)

// Action is a leaf the user can trigger. Action runs fn on the calling
// goroutine; callers hand it to the pool.
type Action struct {
	Base
	fn func()
}

// NewAction returns an action named name that runs fn.
func NewAction(name string, fn func()) *Action {
	return &Action{Base: Base{name: name}, fn: fn}
}

func (a *Action) SetActionView(v mv.View) {
	a.Base.SetView(v)
}

func (a *Action) Action() {
	events.Model.Action(a.Name())
	if a.fn != nil {
		a.fn()
	}
}
