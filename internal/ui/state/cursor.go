package state

// MoveCursor moves by delta rows. With wrap the cursor cycles past either
// end, otherwise it clamps.
func (l *Level) MoveCursor(delta int, wrap bool) bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	next := l.Cursor + delta
	if l.Cursor < 0 {
		next = 0
	}
	switch {
	case wrap:
		next = ((next % n) + n) % n
	case next < 0:
		next = 0
	case next >= n:
		next = n - 1
	}
	l.Cursor = next
	return l.Cursor != old
}

// MoveCursorHome moves to the first row.
func (l *Level) MoveCursorHome() bool {
	return l.MoveCursor(-len(l.Items), false)
}

// MoveCursorEnd moves to the last row.
func (l *Level) MoveCursorEnd() bool {
	return l.MoveCursor(len(l.Items), false)
}

// MoveCursorPageUp moves up one page of maxVisible rows.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.MoveCursor(-l.pageSize(maxVisible), false)
}

// MoveCursorPageDown moves down one page of maxVisible rows.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.MoveCursor(l.pageSize(maxVisible), false)
}

func (l *Level) pageSize(maxVisible int) int {
	if maxVisible <= 0 || maxVisible > len(l.Items) {
		return max(len(l.Items), 1)
	}
	return maxVisible
}

// EnsureCursorVisible scrolls the viewport so the cursor row is shown.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	l.Cursor = min(max(l.Cursor, 0), n-1)
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := max(n-maxVisible, 0)
	l.ViewportOffset = min(max(l.ViewportOffset, 0), maxOffset)
	if l.Cursor < l.ViewportOffset {
		l.ViewportOffset = l.Cursor
	}
	if l.Cursor > l.ViewportOffset+maxVisible-1 {
		l.ViewportOffset = min(l.Cursor-maxVisible+1, maxOffset)
	}
}
