// Package model provides the reusable model building blocks business logic
// embeds: a set-once view holder, a parent with an ordered child list, an
// action, a checkbox, and the two checkbox-group coordinators.
package model

import (
	"sync"

	"github.com/atomicstack/multiview/internal/mv"
)

// Base holds the state every model shares: its display name, whether Run
// must go to the pool, and the view attached exactly once.
type Base struct {
	mu          sync.Mutex
	name        string
	nameFn      func() string
	longRunning bool
	view        mv.View
}

// SetNameFunc derives the display name on demand.
func (b *Base) SetNameFunc(fn func() string) {
	b.mu.Lock()
	b.nameFn = fn
	b.mu.Unlock()
}

// SetLongRunningInit marks Run as work for the pool.
func (b *Base) SetLongRunningInit(longRunning bool) {
	b.mu.Lock()
	b.longRunning = longRunning
	b.mu.Unlock()
}

func (b *Base) Name() string {
	b.mu.Lock()
	fn, name := b.nameFn, b.name
	b.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return name
}

// SetName changes the fixed display name and pushes it to the view when
// one is attached. Embedders call it from their constructors.
func (b *Base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	view := b.view
	b.mu.Unlock()
	if view != nil {
		view.SetName(name)
	}
}

func (b *Base) LongRunningInit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.longRunning
}

func (b *Base) Run() {}

func (b *Base) Stop() {}

func (b *Base) View() mv.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// SetView attaches v. Attaching nil or attaching twice panics with an
// InvariantError.
func (b *Base) SetView(v mv.View) {
	if v == nil {
		panic(mv.Invariant("model.SetView", "nil view attached to %q", b.Name()))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view != nil {
		panic(mv.Invariant("model.SetView", "view already attached to %q", b.name))
	}
	b.view = v
}

// NotifyMyParent forwards through the attached view. It is a no-op before
// attach.
func (b *Base) NotifyMyParent() {
	if v := b.View(); v != nil {
		v.NotifyMyParent()
	}
}

// Status helpers push onto the status channel when attached.

func (b *Base) ReportError(msg string) {
	if v := b.View(); v != nil {
		v.Error(msg)
	}
}

func (b *Base) ReportWarning(msg string) {
	if v := b.View(); v != nil {
		v.Warning(msg)
	}
}

func (b *Base) ReportInfo(msg string) {
	if v := b.View(); v != nil {
		v.Info(msg)
	}
}

func (b *Base) ClearStatus() {
	if v := b.View(); v != nil {
		v.None()
	}
}

// Pulse adds then removes accent on the attached view.
func (b *Base) Pulse(accent mv.Accent) {
	if v := b.View(); v != nil {
		v.AddAccent(accent)
		v.RemoveAccent(accent)
	}
}
