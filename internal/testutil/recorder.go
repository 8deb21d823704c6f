// Package testutil provides test doubles shared across packages.
package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/render"
)

// Recorder is an in-memory rendering backend that logs every call it
// receives, for asserting fan-out order and widget counts.
type Recorder struct {
	*render.Backend

	mu     sync.Mutex
	events []render.Event
}

// NewRecorder returns a recording backend labelled name.
func NewRecorder(name string, opts ...render.Option) *Recorder {
	r := &Recorder{}
	opts = append(opts, render.WithObserver(r.record))
	r.Backend = render.New(name, opts...)
	return r
}

func (r *Recorder) record(ev render.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns every recorded call in order.
func (r *Recorder) Events() []render.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.Event(nil), r.events...)
}

// Ops returns the recorded calls named op.
func (r *Recorder) Ops(op string) []render.Event {
	var out []render.Event
	for _, ev := range r.Events() {
		if ev.Op == op {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many calls named op were recorded.
func (r *Recorder) Count(op string) int {
	return len(r.Ops(op))
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Sequencer records calls from several views into one shared log so tests
// can assert cross-backend ordering.
type Sequencer struct {
	mu    sync.Mutex
	calls []string
}

// Log appends one entry.
func (s *Sequencer) Log(format string, args ...any) {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

// Calls returns the shared log.
func (s *Sequencer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// SeqView is a leaf view that logs each call to a Sequencer under its
// label. Setting Panic makes every call panic with that value after it is
// logged.
type SeqView struct {
	Label string
	Seq   *Sequencer
	Panic any
	W, H  int
}

var _ mv.CheckboxView = (*SeqView)(nil)

func (v *SeqView) log(op string, arg any) {
	v.Seq.Log("%s:%s:%v", v.Label, op, arg)
	if v.Panic != nil {
		panic(v.Panic)
	}
}

func (v *SeqView) SetName(name string)           { v.log("name", name) }
func (v *SeqView) SetIcon(icon mv.Icon)          { v.log("icon", icon.Name) }
func (v *SeqView) AddAccent(accent mv.Accent)    { v.log("add-accent", accent) }
func (v *SeqView) RemoveAccent(accent mv.Accent) { v.log("remove-accent", accent) }
func (v *SeqView) Error(msg string)              { v.log("error", msg) }
func (v *SeqView) Warning(msg string)            { v.log("warning", msg) }
func (v *SeqView) Info(msg string)               { v.log("info", msg) }
func (v *SeqView) None()                         { v.log("none", "") }
func (v *SeqView) NotifyMyParent()               { v.log("notify", "") }
func (v *SeqView) SetChecked(checked bool)       { v.log("checked", checked) }
func (v *SeqView) IconSize() (int, int)          { return v.W, v.H }

// RequireInvariant fails t unless fn panics with an InvariantError.
func RequireInvariant(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected invariant panic, got none")
		}
		if !mv.IsInvariant(r) {
			t.Fatalf("expected invariant panic, got %v", r)
		}
	}()
	fn()
}
