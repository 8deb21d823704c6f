package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/metrics"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/testutil"
	"github.com/jonboulle/clockwork"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(list ...Item) DiscoverFunc {
	return func(context.Context) ([]Item, error) {
		return list, nil
	}
}

func ok(name string, counter *atomic.Int32) *Step {
	return NewStep(name, nil, func(context.Context) error {
		if counter != nil {
			counter.Add(1)
		}
		return nil
	})
}

func mounted(t *testing.T, s *Scheduler) *testutil.Recorder {
	t.Helper()
	rec := testutil.NewRecorder("tree")
	root := model.NewParent("root")
	dispatch.Mount(nil, root, rec.Root(root))
	root.AddChild(s)
	t.Cleanup(s.Stop)
	return rec
}

func TestCycleIsolatesFailingItems(t *testing.T) {
	var ran atomic.Int32
	s := New("inbox", Config{Clock: clockwork.NewFakeClock()}, items(
		ok("a", &ran),
		NewStep("b", nil, func(context.Context) error { return errors.New("disk full") }),
		NewStep("c", nil, func(context.Context) error { panic("corrupt header") }),
		ok("d", &ran),
	))

	report, err := s.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]Outcome{"a": Done, "b": Failed, "c": Failed, "d": Done}, report.Outcomes())
	assert.Equal(t, int32(2), ran.Load())
	assert.False(t, report.Cancelled)
	assert.Contains(t, report.Items[2].Err.Error(), "corrupt header")
	assert.Equal(t, Idle, s.State())
}

func TestCycleSkipsItemsAlreadyDone(t *testing.T) {
	var ran atomic.Int32
	s := New("inbox", Config{Clock: clockwork.NewFakeClock()}, items(
		NewStep("archived", func() bool { return true }, func(context.Context) error {
			ran.Add(1)
			return nil
		}),
		ok("fresh", &ran),
	))

	report, err := s.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Skipped, report.Outcomes()["archived"])
	assert.Equal(t, Done, report.Outcomes()["fresh"])
	assert.Equal(t, int32(1), ran.Load())
}

func TestCancellationEndsCycleEarly(t *testing.T) {
	var ran atomic.Int32
	s := New("inbox", Config{Clock: clockwork.NewFakeClock()}, items(
		ok("a", &ran),
		NewStep("b", nil, func(context.Context) error { return context.Canceled }),
		ok("c", &ran),
	))

	report, err := s.Cycle(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Equal(t, map[string]Outcome{"a": Done, "b": Pending, "c": Pending}, report.Outcomes())
	assert.Equal(t, int32(1), ran.Load())
}

func TestCallerContextCancelsCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New("inbox", Config{Clock: clockwork.NewFakeClock()}, items(
		NewStep("a", nil, func(context.Context) error {
			cancel()
			return nil
		}),
		ok("b", nil),
	))

	report, err := s.Cycle(ctx)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Equal(t, Pending, report.Outcomes()["b"])
}

func TestItemsAreRederivedEveryCycle(t *testing.T) {
	var discovered atomic.Int32
	s := New("inbox", Config{Clock: clockwork.NewFakeClock()}, func(context.Context) ([]Item, error) {
		n := discovered.Add(1)
		list := make([]Item, 0, n)
		for i := int32(0); i < n; i++ {
			list = append(list, ok("item", nil))
		}
		return list, nil
	})

	first, err := s.Cycle(context.Background())
	require.NoError(t, err)
	second, err := s.Cycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Items, 1)
	assert.Len(t, second.Items, 2)
}

func TestOverlappingCycleIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	overlapsBefore := promtest.ToFloat64(metrics.SchedulerCycles.WithLabelValues("overlap-test", "overlap"))
	s := New("overlap-test", Config{Clock: clockwork.NewFakeClock()}, items(
		NewStep("slow", nil, func(context.Context) error {
			close(started)
			<-release
			return nil
		}),
	))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Cycle(context.Background())
	}()
	<-started
	require.Equal(t, Running, s.State())

	_, err := s.Cycle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycleOverlap)
	assert.True(t, mv.IsInvariant(err))
	assert.Equal(t, 1, s.Overlaps())
	assert.Equal(t, overlapsBefore+1, promtest.ToFloat64(metrics.SchedulerCycles.WithLabelValues("overlap-test", "overlap")))

	close(release)
	wg.Wait()
	assert.Equal(t, Idle, s.State())
}

func TestDiscoverErrorSurfacesOnStatus(t *testing.T) {
	s := New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, func(context.Context) ([]Item, error) {
		return nil, errors.New("permission denied")
	})
	rec := mounted(t, s)

	_, err := s.Cycle(context.Background())
	require.Error(t, err)
	item, found := rec.FindModel(s)
	require.True(t, found)
	assert.Equal(t, mv.StatusError, item.Status)
	assert.Contains(t, item.Message, "permission denied")
}

func TestTimerRunsDelayedThenPeriodicCycles(t *testing.T) {
	fc := clockwork.NewFakeClock()
	var ran atomic.Int32
	s := New("inbox", Config{Delay: 5 * time.Second, Interval: time.Minute, Clock: fc}, items(ok("a", &ran)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.Run()
	s.Run()
	assert.Equal(t, Scheduled, s.State())

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(4 * time.Second)
	assert.Equal(t, int32(0), ran.Load())
	fc.Advance(time.Second)
	assert.Eventually(t, func() bool { return ran.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(time.Minute)
	assert.Eventually(t, func() bool { return ran.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	assert.Equal(t, Stopped, s.State())
	fc.Advance(time.Hour)
	assert.Equal(t, int32(2), ran.Load())
}

func TestRunAddsRunNowChildAndStopRemovesIt(t *testing.T) {
	var ran atomic.Int32
	s := New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, items(ok("a", &ran)))
	rec := mounted(t, s)

	require.Len(t, s.Children(), 1)
	assert.Same(t, s.RunNowAction(), s.Children()[0])

	s.RunNowAction().Action()
	assert.Equal(t, int32(1), ran.Load())

	s.Stop()
	s.Stop()
	assert.Empty(t, s.Children())
	assert.Equal(t, 1, rec.Live(), "only the scheduler widget itself remains")

	_, err := s.Cycle(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestCycleItemsAreTransientChildren(t *testing.T) {
	var visible []int
	var rec *testutil.Recorder
	probe := func(context.Context) error {
		visible = append(visible, rec.Live())
		return nil
	}
	s := New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, items(
		NewStep("a", nil, probe),
		NewStep("b", nil, probe),
	))
	rec = mounted(t, s)
	before := rec.Live()

	_, err := s.Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{before + 2, before + 2}, visible)
	assert.Equal(t, before, rec.Live())

	item, found := rec.FindModel(s)
	require.True(t, found)
	assert.Equal(t, mv.StatusInfo, item.Status)
}

func TestFailedItemMarksSchedulerError(t *testing.T) {
	s := New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, items(
		NewStep("bad", nil, func(context.Context) error { return errors.New("nope") }),
	))
	rec := mounted(t, s)

	_, err := s.Cycle(context.Background())
	require.NoError(t, err)
	item, found := rec.FindModel(s)
	require.True(t, found)
	assert.Equal(t, mv.StatusError, item.Status)
	assert.Equal(t, "1 of 1 items failed", item.Message)
}

func TestRunNowWaitsForReport(t *testing.T) {
	var submitted atomic.Int32
	sub := mv.SubmitterFunc(func(name string, task func()) mv.Outcome {
		submitted.Add(1)
		go task()
		return mv.Queued
	})
	s := New("inbox", Config{Clock: clockwork.NewFakeClock(), Submitter: sub}, items(ok("a", nil), ok("b", nil)))

	report, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(Done))
	assert.Equal(t, int32(1), submitted.Load())
	assert.Equal(t, report.Items, s.LastReport().Items)
}

func TestStopLetsRunningCycleFinish(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var slowErr error
	var nextRan atomic.Int32
	s := New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, items(
		NewStep("slow", nil, func(ctx context.Context) error {
			close(started)
			<-release
			slowErr = ctx.Err()
			return nil
		}),
		ok("next", &nextRan),
	))
	rec := mounted(t, s)

	type result struct {
		report CycleReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := s.Cycle(context.Background())
		done <- result{report, err}
	}()
	<-started

	s.Stop()
	assert.Equal(t, Stopped, s.State())
	close(release)

	res := <-done
	require.NoError(t, res.err)
	assert.NoError(t, slowErr)
	assert.False(t, res.report.Cancelled)
	assert.Equal(t, map[string]Outcome{"slow": Done, "next": Done}, res.report.Outcomes())
	assert.Equal(t, int32(1), nextRan.Load())
	assert.Empty(t, s.Children())
	assert.Equal(t, 1, rec.Live(), "only the scheduler widget itself remains")

	_, err := s.Cycle(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestStopFromInsideCycleReturns(t *testing.T) {
	var s *Scheduler
	stopped := make(chan struct{})
	var after atomic.Int32
	s = New("inbox", Config{Delay: time.Hour, Clock: clockwork.NewFakeClock()}, items(
		NewStep("stopper", nil, func(context.Context) error {
			s.Stop()
			close(stopped)
			return nil
		}),
		ok("after", &after),
	))
	rec := mounted(t, s)

	done := make(chan CycleReport, 1)
	go func() {
		report, _ := s.Cycle(context.Background())
		done <- report
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop called from a work item never returned")
	}
	var report CycleReport
	select {
	case report = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle never finished after Stop")
	}
	assert.Equal(t, Done, report.Outcomes()["after"])
	assert.Equal(t, int32(1), after.Load())
	assert.Equal(t, Stopped, s.State())
	assert.Empty(t, s.Children())
	assert.Equal(t, 1, rec.Live())
}

func TestTriggeredOverlapIsLoggedWithItsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multiview.log")
	logging.Configure(path)
	t.Cleanup(func() { logging.Configure("") })

	release := make(chan struct{})
	started := make(chan struct{})
	s := New("overlap-source", Config{Clock: clockwork.NewFakeClock()}, items(
		NewStep("slow", nil, func(context.Context) error {
			close(started)
			<-release
			return nil
		}),
	))
	go func() { _, _ = s.Cycle(context.Background()) }()
	<-started

	assert.Equal(t, mv.CallerRan, s.Trigger())
	close(release)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source=trigger")
	assert.Contains(t, string(data), "a cycle is already running")
	assert.Equal(t, 1, s.Overlaps())
}
