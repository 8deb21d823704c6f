package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/multiview/internal/model"
)

// Outcome is what a cycle did with one item.
type Outcome int

const (
	// Pending items were not reached before the cycle ended.
	Pending Outcome = iota
	Done
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ItemResult is one item's outcome in a cycle.
type ItemResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// CycleReport summarises one cycle.
type CycleReport struct {
	Scheduler string
	Started   time.Time
	Finished  time.Time
	Items     []ItemResult
	Cancelled bool
}

// Count returns how many items ended with o.
func (r CycleReport) Count(o Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

// Outcomes maps item names to outcomes.
func (r CycleReport) Outcomes() map[string]Outcome {
	out := make(map[string]Outcome, len(r.Items))
	for _, it := range r.Items {
		out[it.Name] = it.Outcome
	}
	return out
}

// Step is an Item built from functions.
type Step struct {
	model.Base
	done func() bool
	exec func(ctx context.Context) error
}

// NewStep returns an item named name. A nil done means never done.
func NewStep(name string, done func() bool, exec func(ctx context.Context) error) *Step {
	s := &Step{done: done, exec: exec}
	s.SetName(name)
	return s
}

func (s *Step) Done() bool {
	if s.done == nil {
		return false
	}
	return s.done()
}

func (s *Step) Execute(ctx context.Context) error {
	if s.exec == nil {
		return nil
	}
	return s.exec(ctx)
}
