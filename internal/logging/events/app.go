package events

import "github.com/atomicstack/multiview/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Mount(root string, backends []string) {
	logging.Trace("app.mount", map[string]interface{}{"root": root, "backends": backends})
}

func (AppTracer) Stop(reason string) {
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}
