package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atomicstack/multiview/internal/mv"
)

var (
	// ErrDuplicateValue rejects a group built with the same value twice.
	ErrDuplicateValue = errors.New("duplicate value")
	// ErrUnknownValue rejects a selection outside the group's values.
	ErrUnknownValue = errors.New("unknown value")
)

func checkUnique(values []string) error {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateValue, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// RadioGroup keeps exactly one of a fixed list of checkboxes checked.
type RadioGroup struct {
	Parent

	values []string
	boxes  []*Checkbox

	smu      sync.Mutex
	selected int
	onSelect func(string)
}

// NewRadioGroup builds a group over values with selected checked.
func NewRadioGroup(name string, values []string, selected string) (*RadioGroup, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("radio group %q: no values", name)
	}
	if err := checkUnique(values); err != nil {
		return nil, fmt.Errorf("radio group %q: %w", name, err)
	}
	g := &RadioGroup{
		Parent:   Parent{Base: Base{name: name}},
		values:   append([]string(nil), values...),
		selected: -1,
	}
	for i, v := range values {
		if v == selected {
			g.selected = i
		}
		g.boxes = append(g.boxes, NewCheckbox(v, v == selected))
	}
	if g.selected < 0 {
		return nil, fmt.Errorf("radio group %q: %w: %q", name, ErrUnknownValue, selected)
	}
	g.OnAttach(func() {
		for _, box := range g.boxes {
			g.AddChild(box)
		}
	})
	return g, nil
}

// OnSelect runs fn once per change of selection.
func (g *RadioGroup) OnSelect(fn func(string)) {
	g.smu.Lock()
	g.onSelect = fn
	g.smu.Unlock()
}

// Selected returns the checked value.
func (g *RadioGroup) Selected() string {
	g.smu.Lock()
	defer g.smu.Unlock()
	return g.values[g.selected]
}

// Values returns the enumeration in display order.
func (g *RadioGroup) Values() []string {
	return append([]string(nil), g.values...)
}

// Box returns the checkbox for value.
func (g *RadioGroup) Box(value string) (*Checkbox, bool) {
	for i, v := range g.values {
		if v == value {
			return g.boxes[i], true
		}
	}
	return nil, false
}

// Select checks value, which unchecks the rest.
func (g *RadioGroup) Select(value string) error {
	box, ok := g.Box(value)
	if !ok {
		return fmt.Errorf("radio group %q: %w: %q", g.Name(), ErrUnknownValue, value)
	}
	box.SetChecked(true)
	return nil
}

func (g *RadioGroup) indexOf(child mv.Model) int {
	for i, box := range g.boxes {
		if mv.Model(box) == child {
			return i
		}
	}
	return -1
}

// ChildHasChanged resolves child by identity. A newly checked child becomes
// the selection; unchecking the selection checks it again.
func (g *RadioGroup) ChildHasChanged(child mv.Model) {
	idx := g.indexOf(child)
	if idx < 0 {
		g.Parent.ChildHasChanged(child)
		return
	}
	box := g.boxes[idx]

	g.smu.Lock()
	current := g.selected
	if !box.Checked() {
		g.smu.Unlock()
		if idx == current {
			box.SetChecked(true)
		}
		return
	}
	if idx == current {
		g.smu.Unlock()
		return
	}
	g.selected = idx
	hook := g.onSelect
	g.smu.Unlock()

	for i, other := range g.boxes {
		if i != idx {
			other.SetChecked(false)
		}
	}
	g.Parent.ChildHasChanged(child)
	if hook != nil {
		hook(g.values[idx])
	}
}

// CheckSet is a free-form set whose members are shown as checked
// checkboxes. Unchecking a member removes it.
type CheckSet struct {
	Parent

	smu      sync.Mutex
	order    []string
	boxes    map[string]*Checkbox
	onChange func([]string)
}

// NewCheckSet builds a set holding initial.
func NewCheckSet(name string, initial []string) (*CheckSet, error) {
	if err := checkUnique(initial); err != nil {
		return nil, fmt.Errorf("check set %q: %w", name, err)
	}
	s := &CheckSet{
		Parent: Parent{Base: Base{name: name}},
		boxes:  make(map[string]*Checkbox, len(initial)),
	}
	for _, v := range initial {
		s.order = append(s.order, v)
		s.boxes[v] = NewCheckbox(v, true)
	}
	s.OnAttach(func() {
		s.smu.Lock()
		boxes := make([]*Checkbox, 0, len(s.order))
		for _, v := range s.order {
			boxes = append(boxes, s.boxes[v])
		}
		s.smu.Unlock()
		for _, box := range boxes {
			s.AddChild(box)
		}
	})
	return s, nil
}

// OnChange runs fn with the membership after every Add or Remove.
func (s *CheckSet) OnChange(fn func([]string)) {
	s.smu.Lock()
	s.onChange = fn
	s.smu.Unlock()
}

// Values returns the members in insertion order.
func (s *CheckSet) Values() []string {
	s.smu.Lock()
	defer s.smu.Unlock()
	return append([]string(nil), s.order...)
}

// Contains reports membership.
func (s *CheckSet) Contains(value string) bool {
	s.smu.Lock()
	defer s.smu.Unlock()
	_, ok := s.boxes[value]
	return ok
}

// Len returns the member count.
func (s *CheckSet) Len() int {
	s.smu.Lock()
	defer s.smu.Unlock()
	return len(s.order)
}

// Add inserts value. It reports false when value is already a member.
func (s *CheckSet) Add(value string) bool {
	s.smu.Lock()
	if _, ok := s.boxes[value]; ok {
		s.smu.Unlock()
		return false
	}
	box := NewCheckbox(value, true)
	s.boxes[value] = box
	s.order = append(s.order, value)
	s.smu.Unlock()

	if s.Attached() {
		s.AddChild(box)
	}
	s.changed()
	return true
}

// Remove deletes value. It reports false when value is not a member.
func (s *CheckSet) Remove(value string) bool {
	s.smu.Lock()
	box, ok := s.boxes[value]
	if !ok {
		s.smu.Unlock()
		return false
	}
	delete(s.boxes, value)
	for i, v := range s.order {
		if v == value {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.smu.Unlock()

	if s.HasChild(box) {
		s.RemoveChild(box)
	}
	s.changed()
	return true
}

func (s *CheckSet) changed() {
	s.smu.Lock()
	hook := s.onChange
	values := append([]string(nil), s.order...)
	s.smu.Unlock()
	if hook != nil {
		hook(values)
	}
}

func (s *CheckSet) valueOf(child mv.Model) (string, *Checkbox, bool) {
	s.smu.Lock()
	defer s.smu.Unlock()
	for v, box := range s.boxes {
		if mv.Model(box) == child {
			return v, box, true
		}
	}
	return "", nil, false
}

// ChildHasChanged removes a member whose checkbox was unchecked.
func (s *CheckSet) ChildHasChanged(child mv.Model) {
	value, box, ok := s.valueOf(child)
	if !ok {
		return
	}
	s.Parent.ChildHasChanged(child)
	if !box.Checked() {
		s.Remove(value)
	}
}
