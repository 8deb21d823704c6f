package model

import (
	"sync"

	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/mv"
)

// Checkbox is a boolean toggle.
type Checkbox struct {
	Base

	cmu      sync.Mutex
	cview    mv.CheckboxView
	checked  bool
	onToggle func(bool)
}

// NewCheckbox returns a checkbox named name in the given initial state.
func NewCheckbox(name string, checked bool) *Checkbox {
	return &Checkbox{Base: Base{name: name}, checked: checked}
}

// OnToggle runs fn after every effective state change, before the parent
// is notified.
func (c *Checkbox) OnToggle(fn func(bool)) {
	c.cmu.Lock()
	c.onToggle = fn
	c.cmu.Unlock()
}

func (c *Checkbox) SetCheckboxView(v mv.CheckboxView) {
	if v == nil {
		panic(mv.Invariant("model.SetCheckboxView", "nil view attached to %q", c.Name()))
	}
	c.Base.SetView(v)
	c.cmu.Lock()
	c.cview = v
	c.cmu.Unlock()
}

func (c *Checkbox) Checked() bool {
	c.cmu.Lock()
	defer c.cmu.Unlock()
	return c.checked
}

// SetChecked is a no-op when checked is already the current state.
// Otherwise it updates the view, runs the toggle hook and notifies the
// parent, all on the calling goroutine.
func (c *Checkbox) SetChecked(checked bool) {
	c.cmu.Lock()
	if c.checked == checked {
		c.cmu.Unlock()
		return
	}
	c.checked = checked
	view, hook := c.cview, c.onToggle
	c.cmu.Unlock()

	events.Model.Checked(c.Name(), checked)
	if view != nil {
		view.SetChecked(checked)
	}
	if hook != nil {
		hook(checked)
	}
	c.NotifyMyParent()
}

// Toggle flips the state.
func (c *Checkbox) Toggle() {
	c.cmu.Lock()
	next := !c.checked
	c.cmu.Unlock()
	c.SetChecked(next)
}
