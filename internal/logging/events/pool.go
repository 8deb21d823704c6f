package events

import "github.com/atomicstack/multiview/internal/logging"

type PoolTracer struct{}

var Pool = PoolTracer{}

func (PoolTracer) Submit(id, name, outcome string) {
	logging.Trace("pool.submit", map[string]interface{}{"id": id, "name": name, "outcome": outcome})
}

func (PoolTracer) Progress(id, name string, percent int) {
	logging.Trace("pool.progress", map[string]interface{}{"id": id, "name": name, "percent": percent})
}

func (PoolTracer) Panic(id, name string, recovered interface{}) {
	logging.Trace("pool.panic", map[string]interface{}{"id": id, "name": name, "panic": recovered})
}

func (PoolTracer) WorkerStart(workers int) {
	logging.Trace("pool.worker.start", map[string]interface{}{"workers": workers})
}

func (PoolTracer) WorkerExit(workers int, reason string) {
	logging.Trace("pool.worker.exit", map[string]interface{}{"workers": workers, "reason": reason})
}
