package events

import "github.com/atomicstack/multiview/internal/logging"

type SchedulerTracer struct{}

var Scheduler = SchedulerTracer{}

func (SchedulerTracer) State(name, from, to string) {
	logging.Trace("scheduler.state", map[string]interface{}{"scheduler": name, "from": from, "to": to})
}

func (SchedulerTracer) CycleStart(name string, items int) {
	logging.Trace("scheduler.cycle.start", map[string]interface{}{"scheduler": name, "items": items})
}

func (SchedulerTracer) CycleEnd(name string, done, failed, skipped int) {
	logging.Trace("scheduler.cycle.end", map[string]interface{}{
		"scheduler": name,
		"done":      done,
		"failed":    failed,
		"skipped":   skipped,
	})
}

func (SchedulerTracer) Item(name, item, outcome string) {
	logging.Trace("scheduler.item", map[string]interface{}{"scheduler": name, "item": item, "outcome": outcome})
}
