// Package metrics declares the Prometheus collectors shared by the pool,
// scheduler and dispatch layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task pool metrics
var (
	// PoolSubmissions counts submissions by how the pool placed them
	// (queued, spawned, caller_ran).
	PoolSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiview_pool_submissions_total",
			Help: "Task submissions by placement outcome",
		},
		[]string{"outcome"},
	)

	// PoolWorkers tracks live worker goroutines.
	PoolWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multiview_pool_workers",
			Help: "Live task pool workers",
		},
	)

	// PoolQueueDepth tracks tasks waiting for a worker.
	PoolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "multiview_pool_queue_depth",
			Help: "Tasks waiting in the task pool queue",
		},
	)

	// PoolTaskDuration tracks task execution time in seconds.
	PoolTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "multiview_pool_task_duration_seconds",
			Help:    "Task execution time in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
	)

	// PoolTaskPanics counts tasks that panicked.
	PoolTaskPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multiview_pool_task_panics_total",
			Help: "Tasks that panicked inside the pool",
		},
	)
)

// Scheduler metrics
var (
	// SchedulerCycles counts cycles by result (ok, partial, cancelled, overlap).
	SchedulerCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiview_scheduler_cycles_total",
			Help: "Scheduler cycles by result",
		},
		[]string{"scheduler", "result"},
	)

	// SchedulerItems counts work items by outcome.
	SchedulerItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiview_scheduler_items_total",
			Help: "Scheduler work items by outcome",
		},
		[]string{"scheduler", "outcome"},
	)
)

// Dispatch metrics
var (
	// FanoutFailures counts member views that panicked during fan-out.
	FanoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "multiview_fanout_failures_total",
			Help: "Member view failures during fan-out by operation",
		},
		[]string{"op"},
	)

	// IconMismatches counts icons applied at a size a backend did not expect.
	IconMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "multiview_icon_mismatches_total",
			Help: "Icons fanned out at a size a backend did not expect",
		},
	)
)
