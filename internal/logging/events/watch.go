package events

import "github.com/atomicstack/multiview/internal/logging"

type WatchTracer struct{}

var Watch = WatchTracer{}

func (WatchTracer) Start(dir string) {
	logging.Trace("watch.start", map[string]interface{}{"dir": dir})
}

func (WatchTracer) Stop(dir string) {
	logging.Trace("watch.stop", map[string]interface{}{"dir": dir})
}

func (WatchTracer) Change(name, op string) {
	logging.Trace("watch.change", map[string]interface{}{"name": name, "op": op})
}

func (WatchTracer) Trigger(dir string) {
	logging.Trace("watch.trigger", map[string]interface{}{"dir": dir})
}
