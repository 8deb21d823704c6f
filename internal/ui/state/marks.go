package state

// CleanupMarks drops marks on items that left the level.
func (l *Level) CleanupMarks() {
	if len(l.Marked) == 0 {
		return
	}
	valid := make(map[string]struct{}, len(l.Full))
	for _, item := range l.Full {
		if item.Interactive() {
			valid[item.ID] = struct{}{}
		}
	}
	for id := range l.Marked {
		if _, ok := valid[id]; !ok {
			delete(l.Marked, id)
		}
	}
}

// IsMarked reports whether id is marked.
func (l *Level) IsMarked(id string) bool {
	_, ok := l.Marked[id]
	return ok
}

// ToggleCurrentMark flips the mark under the cursor. Only interactive
// items can be marked.
func (l *Level) ToggleCurrentMark() bool {
	item, ok := l.Current()
	if !ok || !item.Interactive() {
		return false
	}
	if l.Marked == nil {
		l.Marked = make(map[string]struct{})
	}
	if _, marked := l.Marked[item.ID]; marked {
		delete(l.Marked, item.ID)
	} else {
		l.Marked[item.ID] = struct{}{}
	}
	return true
}

// ClearMarks unmarks everything.
func (l *Level) ClearMarks() {
	for id := range l.Marked {
		delete(l.Marked, id)
	}
}

// MarkedItems returns the marked items in display order, including ones
// hidden by the filter.
func (l *Level) MarkedItems() []Item {
	if len(l.Marked) == 0 {
		return nil
	}
	out := make([]Item, 0, len(l.Marked))
	for _, item := range l.Full {
		if l.IsMarked(item.ID) {
			out = append(out, item)
		}
	}
	return out
}
