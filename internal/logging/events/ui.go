package events

import "github.com/atomicstack/multiview/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Command = CommandTracer{}
)

func (UITracer) Enter(levelID, nodeID, label, filter string) {
	logging.Trace("tree.enter", map[string]interface{}{
		"level":  levelID,
		"node":   nodeID,
		"label":  label,
		"filter": filter,
	})
}

func (UITracer) Back(levelID string) {
	logging.Trace("tree.back", map[string]interface{}{"level": levelID})
}

func (UITracer) Cursor(levelID string, cursor int) {
	logging.Trace("tree.cursor", map[string]interface{}{"level": levelID, "cursor": cursor})
}

func (UITracer) Toggle(nodeID string, checked bool) {
	logging.Trace("tree.toggle", map[string]interface{}{"node": nodeID, "checked": checked})
}

func (FilterTracer) Cleared(levelID string) {
	logging.Trace("filter.clear", map[string]interface{}{"level": levelID})
}

func (FilterTracer) Append(levelID, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"level": levelID, "filter": filter})
}

func (FilterTracer) Backspace(levelID, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"level": levelID, "filter": filter})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, outcome string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "outcome": outcome})
}

func (UITracer) Mark(levelID, nodeID string, marked bool) {
	logging.Trace("tree.mark", map[string]interface{}{"level": levelID, "node": nodeID, "marked": marked})
}

func (UITracer) Refresh(levels, dropped int) {
	logging.Trace("tree.refresh", map[string]interface{}{"levels": levels, "dropped": dropped})
}

func (FilterTracer) WordBackspace(levelID, filter string) {
	logging.Trace("filter.word_backspace", map[string]interface{}{"level": levelID, "filter": filter})
}

func (FilterTracer) Cursor(levelID string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"level": levelID, "pos": pos})
}
