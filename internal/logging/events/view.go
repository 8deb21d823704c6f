package events

import "github.com/atomicstack/multiview/internal/logging"

type ViewTracer struct{}

type ModelTracer struct{}

var (
	View  = ViewTracer{}
	Model = ModelTracer{}
)

func (ViewTracer) AddChild(parent, child string, members int) {
	logging.Trace("view.add-child", map[string]interface{}{"parent": parent, "child": child, "members": members})
}

func (ViewTracer) RemoveChild(parent, child string, members int) {
	logging.Trace("view.remove-child", map[string]interface{}{"parent": parent, "child": child, "members": members})
}

func (ViewTracer) MemberPanic(op string, member int, recovered interface{}) {
	logging.Trace("view.member-panic", map[string]interface{}{"op": op, "member": member, "panic": recovered})
}

func (ViewTracer) IconMismatch(icon string, member, wantW, wantH, gotW, gotH int) {
	logging.Trace("view.icon-mismatch", map[string]interface{}{
		"icon":   icon,
		"member": member,
		"want":   []int{wantW, wantH},
		"got":    []int{gotW, gotH},
	})
}

func (ModelTracer) Checked(name string, checked bool) {
	logging.Trace("model.checked", map[string]interface{}{"model": name, "checked": checked})
}

func (ModelTracer) ChildChanged(parent, child string) {
	logging.Trace("model.child-changed", map[string]interface{}{"parent": parent, "child": child})
}

func (ModelTracer) Action(name string) {
	logging.Trace("model.action", map[string]interface{}{"model": name})
}
