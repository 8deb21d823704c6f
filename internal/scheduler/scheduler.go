// Package scheduler runs a list of idempotent work items on a delayed then
// periodic timer. The scheduler is itself a parent model: items of the
// running cycle show up as its children and disappear when it ends.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/metrics"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/jonboulle/clockwork"
)

// ErrCycleOverlap is returned when a cycle is triggered while another one
// of the same scheduler is still running.
var ErrCycleOverlap = &mv.InvariantError{Op: "scheduler.cycle", Message: "a cycle is already running"}

// ErrStopped is returned by cycles requested after Stop.
var ErrStopped = errors.New("scheduler stopped")

// RunNowLabel names the action child added once the scheduler runs.
const RunNowLabel = "Run now"

// State is the scheduler lifecycle.
type State int

const (
	Idle State = iota
	Scheduled
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Item is one named unit of idempotent work. Items are models so a cycle
// can show them while it runs.
type Item interface {
	mv.Model
	Done() bool
	Execute(ctx context.Context) error
}

// DiscoverFunc derives the work list. It is called once per cycle.
type DiscoverFunc func(ctx context.Context) ([]Item, error)

// Config times the scheduler.
type Config struct {
	Delay     time.Duration
	Interval  time.Duration
	Clock     clockwork.Clock
	Submitter mv.Submitter
}

// Scheduler is a parent model that runs a cycle over the discovered items
// on every tick.
type Scheduler struct {
	model.Parent

	cfg      Config
	discover DiscoverFunc
	runNow   *model.Action

	loopCtx  context.Context
	stopLoop context.CancelFunc

	mu       sync.Mutex
	state    State
	started  bool
	loopDone chan struct{}
	last     CycleReport
	overlaps int
}

// New returns an idle scheduler named name.
func New(name string, cfg Config, discover DiscoverFunc) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Submitter == nil {
		cfg.Submitter = mv.Inline
	}
	loopCtx, stopLoop := context.WithCancel(context.Background())
	s := &Scheduler{
		cfg:      cfg,
		discover: discover,
		loopCtx:  loopCtx,
		stopLoop: stopLoop,
	}
	s.SetName(name)
	s.SetLongRunningInit(true)
	s.runNow = model.NewAction(RunNowLabel, func() {
		s.runCycle("run-now")
	})
	return s
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the most recent completed cycle.
func (s *Scheduler) LastReport() CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Overlaps counts rejected overlapping cycles.
func (s *Scheduler) Overlaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlaps
}

// RunNowAction returns the action child that triggers a cycle.
func (s *Scheduler) RunNowAction() *model.Action {
	return s.runNow
}

func (s *Scheduler) setStateLocked(next State) {
	if s.state == next {
		return
	}
	events.Scheduler.State(s.Name(), s.state.String(), next.String())
	s.state = next
}

// Run starts the timer and adds the run-now action. Only the first call
// does anything.
func (s *Scheduler) Run() {
	s.mu.Lock()
	if s.started || s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	if s.state == Idle {
		s.setStateLocked(Scheduled)
	}
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	if s.Attached() {
		s.AddChild(s.runNow)
	}
	go s.loop(s.loopDone)
}

func (s *Scheduler) loop(done chan struct{}) {
	defer close(done)
	timer := s.cfg.Clock.NewTimer(s.cfg.Delay)
	defer timer.Stop()
	select {
	case <-s.loopCtx.Done():
		return
	case <-timer.Chan():
		if s.loopCtx.Err() != nil {
			return
		}
		s.tick()
	}
	if s.cfg.Interval <= 0 {
		return
	}
	ticker := s.cfg.Clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.loopCtx.Done():
			return
		case <-ticker.Chan():
			if s.loopCtx.Err() != nil {
				return
			}
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	s.cfg.Submitter.Submit(s.Name()+".cycle", func() {
		s.runCycle("timer")
	})
}

// Trigger hands a cycle to the submitter without waiting for it.
func (s *Scheduler) Trigger() mv.Outcome {
	return s.cfg.Submitter.Submit(s.Name()+".trigger", func() {
		s.runCycle("trigger")
	})
}

// runCycle runs a cycle nobody waits for. Overlaps are logged against the
// source that fired them; other failures were already reported by Cycle.
func (s *Scheduler) runCycle(source string) {
	_, err := s.Cycle(context.Background())
	if errors.Is(err, ErrCycleOverlap) {
		logging.Error(err, "scheduler", s.Name(), "source", source)
	}
}

// RunNow runs a cycle through the submitter and waits for its report.
func (s *Scheduler) RunNow(ctx context.Context) (CycleReport, error) {
	type result struct {
		report CycleReport
		err    error
	}
	ch := make(chan result, 1)
	s.cfg.Submitter.Submit(s.Name()+".run-now", func() {
		report, err := s.Cycle(ctx)
		ch <- result{report, err}
	})
	select {
	case res := <-ch:
		return res.report, res.err
	case <-ctx.Done():
		return CycleReport{}, ctx.Err()
	}
}

// Stop suppresses every future tick and removes the children. A cycle in
// flight is not interrupted: it runs to the end and removes the children
// itself, so Stop is safe to call from inside a cycle. Stopped is terminal.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	inFlight := s.state == Running
	s.setStateLocked(Stopped)
	loopDone := s.loopDone
	s.mu.Unlock()

	s.stopLoop()
	if inFlight {
		return
	}
	if loopDone != nil {
		<-loopDone
	}
	s.Parent.Stop()
}

// Cycle runs one pass over freshly discovered items on the calling
// goroutine. A cycle requested while another runs fails with
// ErrCycleOverlap.
func (s *Scheduler) Cycle(ctx context.Context) (CycleReport, error) {
	name := s.Name()
	s.mu.Lock()
	switch s.state {
	case Stopped:
		s.mu.Unlock()
		return CycleReport{Scheduler: name}, ErrStopped
	case Running:
		s.overlaps++
		s.mu.Unlock()
		err := fmt.Errorf("%s: %w", name, ErrCycleOverlap)
		metrics.SchedulerCycles.WithLabelValues(name, "overlap").Inc()
		logging.Logger().Error("overlapping cycle rejected", "scheduler", name, "error", err)
		s.ReportError(err.Error())
		return CycleReport{Scheduler: name}, err
	}
	s.setStateLocked(Running)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		stopped := s.state == Stopped
		if s.state == Running {
			if s.started {
				s.setStateLocked(Scheduled)
			} else {
				s.setStateLocked(Idle)
			}
		}
		s.mu.Unlock()
		if stopped {
			s.Parent.Stop()
		}
	}()

	report := CycleReport{Scheduler: name, Started: s.cfg.Clock.Now()}
	items, err := s.discover(ctx)
	if err != nil {
		report.Finished = s.cfg.Clock.Now()
		err = fmt.Errorf("%s: discover: %w", name, err)
		metrics.SchedulerCycles.WithLabelValues(name, "discover_error").Inc()
		logging.Error(err)
		s.ReportError(err.Error())
		s.remember(report)
		return report, err
	}

	events.Scheduler.CycleStart(name, len(items))
	attached := s.attach(items)
	defer s.detach(attached)

	report.Items = make([]ItemResult, len(items))
	for i, item := range items {
		report.Items[i] = ItemResult{Name: item.Name(), Outcome: Pending}
	}
	for i, item := range items {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if item.Done() {
			report.Items[i].Outcome = Skipped
			s.recordItem(name, report.Items[i])
			continue
		}
		err := s.execute(ctx, item)
		switch {
		case err == nil:
			report.Items[i].Outcome = Done
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			report.Items[i].Err = err
			report.Cancelled = true
		default:
			report.Items[i].Outcome = Failed
			report.Items[i].Err = err
			logging.Logger().Error("work item failed", "scheduler", name, "item", item.Name(), "error", err)
			if v := item.View(); v != nil {
				v.Error(err.Error())
			}
		}
		s.recordItem(name, report.Items[i])
		if report.Cancelled {
			break
		}
	}
	report.Finished = s.cfg.Clock.Now()
	s.finish(report)
	return report, nil
}

func (s *Scheduler) attach(items []Item) []Item {
	if !s.Attached() {
		return nil
	}
	attached := make([]Item, 0, len(items))
	for _, item := range items {
		if s.State() == Stopped {
			break
		}
		if s.HasChild(item) {
			continue
		}
		s.AddChild(item)
		attached = append(attached, item)
	}
	return attached
}

func (s *Scheduler) detach(items []Item) {
	for i := len(items) - 1; i >= 0; i-- {
		if s.HasChild(items[i]) {
			s.RemoveChild(items[i])
		}
	}
}

// execute runs one item, turning a panic into an error.
func (s *Scheduler) execute(ctx context.Context, item Item) (err error) {
	view := item.View()
	if view != nil {
		view.AddAccent(mv.AccentBusy)
		defer view.RemoveAccent(mv.AccentBusy)
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("work item panicked",
				"scheduler", s.Name(),
				"item", item.Name(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%s panicked: %v", item.Name(), r)
		}
	}()
	return item.Execute(ctx)
}

func (s *Scheduler) recordItem(name string, res ItemResult) {
	metrics.SchedulerItems.WithLabelValues(name, res.Outcome.String()).Inc()
	events.Scheduler.Item(name, res.Name, res.Outcome.String())
}

func (s *Scheduler) finish(report CycleReport) {
	done, failed, skipped := report.Count(Done), report.Count(Failed), report.Count(Skipped)
	events.Scheduler.CycleEnd(report.Scheduler, done, failed, skipped)
	result := "ok"
	switch {
	case report.Cancelled:
		result = "cancelled"
		s.ReportWarning(fmt.Sprintf("cancelled after %d of %d items", done+failed+skipped, len(report.Items)))
	case failed > 0:
		result = "partial"
		s.ReportError(fmt.Sprintf("%d of %d items failed", failed, len(report.Items)))
	default:
		s.ReportInfo(fmt.Sprintf("last run %s: %d done, %d skipped",
			report.Finished.Format("15:04:05"), done, skipped))
	}
	metrics.SchedulerCycles.WithLabelValues(report.Scheduler, result).Inc()
	s.remember(report)
	if done > 0 || failed > 0 {
		s.NotifyMyParent()
	}
}

func (s *Scheduler) remember(report CycleReport) {
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
}
