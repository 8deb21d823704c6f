// Package pool runs background work on a bounded set of workers.
//
// Submission never fails and never drops work. When every worker is busy
// and the queue is full, the task runs on the submitting goroutine instead:
// overload costs the caller latency rather than losing work or growing the
// queue without bound.
package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/metrics"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/google/uuid"
)

// Config sizes the pool.
type Config struct {
	MinWorkers  int
	MaxWorkers  int
	QueueSize   int
	IdleTimeout time.Duration
}

// DefaultConfig returns the sizing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinWorkers:  2,
		MaxWorkers:  8,
		QueueSize:   32,
		IdleTimeout: 30 * time.Second,
	}
}

// Validate reports sizing that cannot work.
func (c Config) Validate() error {
	if c.MinWorkers < 0 {
		return fmt.Errorf("min workers must be >= 0 (got %d)", c.MinWorkers)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be >= 1 (got %d)", c.MaxWorkers)
	}
	if c.MinWorkers > c.MaxWorkers {
		return fmt.Errorf("min workers (%d) exceeds max workers (%d)", c.MinWorkers, c.MaxWorkers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size must be >= 0 (got %d)", c.QueueSize)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be > 0 (got %s)", c.IdleTimeout)
	}
	return nil
}

// Progress receives 0% when a task starts and 100% when it finishes.
type Progress interface {
	Progress(id, name string, percent int)
}

// Option customises a Pool.
type Option func(*Pool)

// WithProgress replaces the default Tracker as the progress sink.
func WithProgress(p Progress) Option {
	return func(pool *Pool) {
		if p != nil {
			pool.progress = p
		}
	}
}

type job struct {
	id   string
	name string
	run  func()
}

// Pool is a bounded worker pool with a caller-runs overflow policy.
type Pool struct {
	cfg      Config
	queue    chan job
	progress Progress
	tracker  *Tracker

	mu      sync.Mutex
	workers int
	closed  bool
	wg      sync.WaitGroup

	submitted atomic.Int64
	callerRan atomic.Int64
	panics    atomic.Int64
}

// New builds a pool. Invalid sizing is corrected towards the defaults so
// construction never fails; use Config.Validate to reject it up front.
func New(cfg Config, opts ...Option) *Pool {
	def := DefaultConfig()
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = def.MaxWorkers
	}
	if cfg.MinWorkers < 0 {
		cfg.MinWorkers = 0
	}
	if cfg.MinWorkers > cfg.MaxWorkers {
		cfg.MinWorkers = cfg.MaxWorkers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	tracker := NewTracker()
	p := &Pool{
		cfg:      cfg,
		queue:    make(chan job, cfg.QueueSize),
		progress: tracker,
		tracker:  tracker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ mv.Submitter = (*Pool)(nil)

// Submit schedules task under name and reports where it was placed.
// It never blocks except when it has to run the task itself.
func (p *Pool) Submit(name string, task func()) mv.Outcome {
	if task == nil {
		return mv.CallerRan
	}
	j := p.wrap(name, task)
	p.submitted.Add(1)

	outcome, inline := p.place(j)
	metrics.PoolSubmissions.WithLabelValues(outcome.String()).Inc()
	events.Pool.Submit(j.id, name, outcome.String())
	if inline {
		p.callerRan.Add(1)
		j.run()
	}
	return outcome
}

func (p *Pool) place(j job) (mv.Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return mv.CallerRan, true
	}
	if p.workers < p.cfg.MinWorkers {
		p.startWorkerLocked(&j)
		return mv.Spawned, false
	}
	select {
	case p.queue <- j:
		metrics.PoolQueueDepth.Set(float64(len(p.queue)))
		if p.workers == 0 {
			p.startWorkerLocked(nil)
		}
		return mv.Queued, false
	default:
	}
	if p.workers < p.cfg.MaxWorkers {
		p.startWorkerLocked(&j)
		return mv.Spawned, false
	}
	return mv.CallerRan, true
}

func (p *Pool) startWorkerLocked(first *job) {
	p.workers++
	p.wg.Add(1)
	metrics.PoolWorkers.Set(float64(p.workers))
	events.Pool.WorkerStart(p.workers)
	go p.work(first)
}

func (p *Pool) work(first *job) {
	defer p.wg.Done()
	if first != nil {
		first.run()
	}
	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				p.exit("shutdown")
				return
			}
			metrics.PoolQueueDepth.Set(float64(len(p.queue)))
			j.run()
		case <-idle.C:
			if p.retireIdle() {
				return
			}
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(p.cfg.IdleTimeout)
	}
}

// retireIdle lets a worker above the minimum exit. A worker never retires
// while work is queued.
func (p *Pool) retireIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.workers <= p.cfg.MinWorkers || len(p.queue) > 0 {
		return false
	}
	p.workers--
	metrics.PoolWorkers.Set(float64(p.workers))
	events.Pool.WorkerExit(p.workers, "idle")
	return true
}

func (p *Pool) exit(reason string) {
	p.mu.Lock()
	p.workers--
	workers := p.workers
	p.mu.Unlock()
	metrics.PoolWorkers.Set(float64(workers))
	events.Pool.WorkerExit(workers, reason)
}

// wrap decorates task so progress always reaches 100% and a panic never
// escapes into the worker or the caller.
func (p *Pool) wrap(name string, task func()) job {
	id := uuid.NewString()
	return job{
		id:   id,
		name: name,
		run: func() {
			start := time.Now()
			p.report(id, name, 0)
			defer func() {
				if r := recover(); r != nil {
					p.panics.Add(1)
					metrics.PoolTaskPanics.Inc()
					events.Pool.Panic(id, name, fmt.Sprint(r))
					logging.Logger().Error("task panicked",
						"task", name,
						"id", id,
						"invariant", mv.IsInvariant(r),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
				}
				metrics.PoolTaskDuration.Observe(time.Since(start).Seconds())
				p.report(id, name, 100)
			}()
			task()
		},
	}
}

func (p *Pool) report(id, name string, percent int) {
	events.Pool.Progress(id, name, percent)
	if p.progress != nil {
		p.progress.Progress(id, name, percent)
	}
}

// Tracker returns the default progress sink. It only sees progress when no
// WithProgress option replaced it.
func (p *Pool) Tracker() *Tracker {
	return p.tracker
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers    int
	QueueDepth int
	Submitted  int64
	CallerRan  int64
	Panics     int64
}

// Stats reports current sizing and counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	workers := p.workers
	depth := len(p.queue)
	p.mu.Unlock()
	return Stats{
		Workers:    workers,
		QueueDepth: depth,
		Submitted:  p.submitted.Load(),
		CallerRan:  p.callerRan.Load(),
		Panics:     p.panics.Load(),
	}
}

// Shutdown stops accepting queued work, lets workers drain the queue and
// waits for them or for ctx. Later submissions run on the caller.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
}
