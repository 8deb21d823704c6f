package mv

import "fmt"

// Icon describes a named glyph and the size it was drawn for.
type Icon struct {
	Name   string
	Glyph  string
	Width  int
	Height int
}

// IsZero reports whether the icon is unset.
func (i Icon) IsZero() bool {
	return i.Name == "" && i.Glyph == ""
}

// Accent is a transient marker added to a view and removed shortly after.
type Accent string

const (
	// AccentChanged marks a subtree whose content just changed.
	AccentChanged Accent = "changed"
	// AccentBusy marks a node whose background work is running.
	AccentBusy Accent = "busy"
)

// Status is the channel a view currently reports on.
type Status int

const (
	StatusNone Status = iota
	StatusInfo
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInfo:
		return "info"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// Outcome records how a Submitter handled a task.
type Outcome int

const (
	// Queued means the task waits for an existing worker.
	Queued Outcome = iota
	// Spawned means a new worker was started for the task.
	Spawned
	// CallerRan means the task already ran on the submitting goroutine.
	CallerRan
)

func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case Spawned:
		return "spawned"
	case CallerRan:
		return "caller_ran"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Submitter executes work off the interactive goroutine.
type Submitter interface {
	Submit(name string, task func()) Outcome
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(name string, task func()) Outcome

func (f SubmitterFunc) Submit(name string, task func()) Outcome {
	return f(name, task)
}

// Inline is a Submitter that runs every task on the caller.
var Inline Submitter = SubmitterFunc(func(_ string, task func()) Outcome {
	task()
	return CallerRan
})
