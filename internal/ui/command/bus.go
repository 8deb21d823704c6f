package command

import (
	"errors"
	"strings"

	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/mv"
	tea "github.com/charmbracelet/bubbletea"
)

// Activator is the widget tree a request is carried out against.
type Activator interface {
	Activate(id string, submit mv.Submitter) (mv.Outcome, error)
}

// Request names one widget to activate.
type Request struct {
	ID    string
	Label string
}

// ResultMsg reports how a batch of requests was handed off.
type ResultMsg struct {
	IDs      []string
	Label    string
	Outcomes []mv.Outcome
	Err      error
}

// Bus hands activations to a submitter so model code never runs on the
// Bubble Tea goroutine.
type Bus struct {
	submitter mv.Submitter
}

// New returns a bus submitting through s; nil runs inline.
func New(s mv.Submitter) *Bus {
	if s == nil {
		s = mv.Inline
	}
	return &Bus{submitter: s}
}

// Execute wraps the requests into a single Bubble Tea command.
func (b *Bus) Execute(target Activator, reqs ...Request) tea.Cmd {
	if len(reqs) == 0 {
		return nil
	}
	labels := make([]string, 0, len(reqs))
	for _, req := range reqs {
		events.Command.Queue(req.ID, req.Label)
		labels = append(labels, req.Label)
	}
	label := strings.Join(labels, ", ")
	return func() tea.Msg {
		res := ResultMsg{Label: label}
		var errs []error
		for _, req := range reqs {
			if target == nil {
				events.Command.Skip(req.ID, req.Label)
				continue
			}
			outcome, err := target.Activate(req.ID, b.submitter)
			if err != nil {
				errs = append(errs, err)
				events.Command.Result(req.ID, req.Label, err.Error())
				continue
			}
			res.IDs = append(res.IDs, req.ID)
			res.Outcomes = append(res.Outcomes, outcome)
			events.Command.Result(req.ID, req.Label, outcome.String())
		}
		res.Err = errors.Join(errs...)
		return res
	}
}
