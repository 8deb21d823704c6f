// Package mv declares the capability contracts shared by models, views and
// the dispatch layer that keeps them consistent.
//
// A model is a node in the application tree. It owns exactly one View, set
// once when the node is attached to its parent. Models advertise what they
// can do through small capability interfaces (ParentModel, ActionModel,
// CheckboxModel) rather than a type hierarchy; a node may implement any
// subset. Views are the render counterparts supplied by concrete backends,
// or a composite that forwards to several of them.
package mv

// Model is a node of the model tree.
type Model interface {
	// Name derives the display name on demand.
	Name() string
	// LongRunningInit reports whether Run must be executed off the
	// interactive goroutine.
	LongRunningInit() bool
	// Run performs setup or the scheduled action. It may return before the
	// work completes.
	Run()
	// Stop cancels periodic execution before returning. It is idempotent
	// and safe to call before, during or after Run.
	Stop()
	// View returns the attached view, or nil before attach.
	View() View
}

// ParentModel owns children and is told when one of them changed.
type ParentModel interface {
	Model
	SetParentView(ParentView)
	ChildHasChanged(child Model)
}

// ActionModel runs a user-triggered action. Action executes synchronously;
// interactive callers hand it to a Submitter.
type ActionModel interface {
	Model
	SetActionView(View)
	Action()
}

// CheckboxModel is a boolean toggle.
type CheckboxModel interface {
	Model
	SetCheckboxView(CheckboxView)
	Checked() bool
	SetChecked(bool)
}

// ViewSetter is implemented by models with no richer capability.
type ViewSetter interface {
	SetView(View)
}

// View renders a single model.
type View interface {
	SetName(name string)
	SetIcon(icon Icon)
	AddAccent(accent Accent)
	RemoveAccent(accent Accent)
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	None()
	// NotifyMyParent tells the parent model that this subtree changed.
	NotifyMyParent()
}

// ParentView renders a model that has children.
type ParentView interface {
	View
	AddChild(child Model) View
	RemoveChild(child Model)
}

// CheckboxView renders a toggle.
type CheckboxView interface {
	View
	SetChecked(checked bool)
}

// IconSizer is implemented by concrete views that render icons at a fixed
// size.
type IconSizer interface {
	IconSize() (width, height int)
}
