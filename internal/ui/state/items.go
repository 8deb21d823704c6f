package state

// Kind says what activating an item does.
type Kind int

const (
	KindPlain Kind = iota
	KindParent
	KindCheckbox
	KindAction
)

// Item is one row of a level: a widget of the window tree.
type Item struct {
	ID       string
	Name     string
	Label    string
	Kind     Kind
	Checked  bool
	Accented bool
	Alert    bool
}

// Interactive reports whether activating the item calls into its model.
func (i Item) Interactive() bool {
	return i.Kind == KindCheckbox || i.Kind == KindAction
}

// CloneItems returns a copy with its own backing array.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
