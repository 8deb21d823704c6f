package state

import (
	"reflect"
	"testing"
)

func TestSetFilterTracksCursorAndRestoresPosition(t *testing.T) {
	level := newTestLevel("one", "two", "three")
	level.Cursor = 2
	level.SetFilter("two", len("two"))

	if level.FilterCursor != len("two") {
		t.Fatalf("expected cursor at end, got %d", level.FilterCursor)
	}
	if level.Cursor != 0 {
		t.Fatalf("expected filtered cursor at 0, got %d", level.Cursor)
	}
	if len(level.Items) != 1 || level.Items[0].Name != "two" {
		t.Fatalf("expected only 'two', got %#v", level.Items)
	}

	level.SetFilter("", 0)
	if level.Cursor != 2 {
		t.Fatalf("expected cursor restored to 2, got %d", level.Cursor)
	}
	if level.LastCursor != -1 {
		t.Fatalf("expected last cursor reset, got %d", level.LastCursor)
	}
}

func TestInsertAndDeleteFilterText(t *testing.T) {
	level := newTestLevel("alpha")

	if !level.InsertFilterText("ab") {
		t.Fatal("expected insert to succeed")
	}
	level.FilterCursor = 1
	level.InsertFilterText("z")
	if level.Filter != "azb" || level.FilterCursor != 2 {
		t.Fatalf("unexpected filter state %q/%d", level.Filter, level.FilterCursor)
	}

	if !level.DeleteFilterRuneBackward() {
		t.Fatal("expected rune deletion to succeed")
	}
	if level.Filter != "ab" || level.FilterCursor != 1 {
		t.Fatalf("unexpected filter state after delete %q/%d", level.Filter, level.FilterCursor)
	}

	level.SetFilter("abc def", len("abc def"))
	if !level.DeleteFilterWordBackward() {
		t.Fatal("expected word deletion to succeed")
	}
	if level.Filter != "abc " {
		t.Fatalf("expected trailing word removed, got %q", level.Filter)
	}

	level.SetFilter("abc", 0)
	if level.DeleteFilterRuneBackward() {
		t.Fatal("expected delete at start to fail")
	}
}

func TestFilterCursorNavigation(t *testing.T) {
	level := newTestLevel("one", "two")
	level.SetFilter("one two", len("one two"))

	if !level.MoveFilterCursorWordBackward() || level.FilterCursor != 4 {
		t.Fatalf("expected cursor at 4, got %d", level.FilterCursor)
	}
	if !level.MoveFilterCursorWordForward() || level.FilterCursor != 7 {
		t.Fatalf("expected cursor at end, got %d", level.FilterCursor)
	}
	if !level.MoveFilterCursor(-1) || level.FilterCursor != 6 {
		t.Fatalf("expected cursor at 6, got %d", level.FilterCursor)
	}
	if !level.MoveFilterCursorStart() || level.FilterCursor != 0 {
		t.Fatalf("expected cursor at 0, got %d", level.FilterCursor)
	}
	if level.MoveFilterCursor(-1) {
		t.Fatal("expected no movement before the start")
	}
	if !level.MoveFilterCursorEnd() {
		t.Fatal("expected move back to end")
	}
}

func TestFilterItemsMatchesNamesNotMarkers(t *testing.T) {
	items := []Item{
		{ID: "n1", Name: "Alpha", Label: "[x] Alpha"},
		{ID: "n2", Name: "Beta", Label: "[ ] Beta"},
	}
	if got := FilterItems(items, "alp"); len(got) != 1 || got[0].Name != "Alpha" {
		t.Fatalf("unexpected filtered results %#v", got)
	}
	if got := FilterItems(items, "ta"); len(got) != 1 || got[0].Name != "Beta" {
		t.Fatalf("expected fuzzy match for Beta, got %#v", got)
	}
	if got := FilterItems(items, "x"); len(got) != 0 {
		t.Fatalf("expected the checkbox marker to be ignored, got %#v", got)
	}

	clone := CloneItems(items)
	clone[0].Name = "changed"
	if items[0].Name != "Alpha" {
		t.Fatal("expected original slice to remain unchanged")
	}
}

func TestBestMatchIndex(t *testing.T) {
	items := []Item{{Name: "First"}, {Name: "Second"}, {Name: "Third"}}

	if idx := BestMatchIndex(items, "second"); idx != 1 {
		t.Fatalf("expected exact match index 1, got %d", idx)
	}
	if idx := BestMatchIndex(items, "th"); idx != 2 {
		t.Fatalf("expected prefix match index 2, got %d", idx)
	}
	if idx := BestMatchIndex(items, "zzz"); idx != 0 {
		t.Fatalf("expected fallback index 0, got %d", idx)
	}
	if idx := BestMatchIndex(nil, "anything"); idx != -1 {
		t.Fatalf("expected -1 for empty slice, got %d", idx)
	}
}

func TestSetFilterSelectsFuzzyMatch(t *testing.T) {
	level := NewLevel("n1", "title", nil, []Item{{ID: "n2", Name: "Alpha"}, {ID: "n3", Name: "Beta"}})
	level.SetFilter("bt", 2)
	if !reflect.DeepEqual(level.Items, []Item{{ID: "n3", Name: "Beta"}}) {
		t.Fatalf("expected filtered items to contain Beta, got %#v", level.Items)
	}
	if level.Cursor != 0 {
		t.Fatalf("expected cursor on the only match, got %d", level.Cursor)
	}
}
