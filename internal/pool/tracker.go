package pool

import (
	"sort"
	"sync"
	"time"
)

// Running describes a task that reported 0% but not yet 100%.
type Running struct {
	ID      string
	Name    string
	Percent int
	Started time.Time
}

// Tracker is the default Progress sink. It keeps the set of running tasks
// so front ends can show what the pool is doing.
type Tracker struct {
	mu       sync.Mutex
	running  map[string]Running
	finished int64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{running: make(map[string]Running)}
}

// Progress implements Progress.
func (t *Tracker) Progress(id, name string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if percent >= 100 {
		if _, ok := t.running[id]; ok {
			delete(t.running, id)
			t.finished++
		}
		return
	}
	entry, ok := t.running[id]
	if !ok {
		entry = Running{ID: id, Name: name, Started: time.Now()}
	}
	entry.Percent = percent
	t.running[id] = entry
}

// Running returns the running tasks, oldest first.
func (t *Tracker) Running() []Running {
	t.mu.Lock()
	out := make([]Running, 0, len(t.running))
	for _, r := range t.running {
		out = append(out, r)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].ID < out[j].ID
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// Finished returns how many tracked tasks reached 100%.
func (t *Tracker) Finished() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}
