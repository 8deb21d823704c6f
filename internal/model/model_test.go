package model

import (
	"errors"
	"sync"
	"testing"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mount(root mv.Model) *testutil.Recorder {
	rec := testutil.NewRecorder("tree")
	dispatch.Mount(nil, root, rec.Root(root))
	return rec
}

type changeLog struct {
	mu    sync.Mutex
	names []string
}

func (c *changeLog) record(child mv.Model) {
	c.mu.Lock()
	c.names = append(c.names, child.Name())
	c.mu.Unlock()
}

func (c *changeLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func checkedValues(t *testing.T, rec *testutil.Recorder, parent mv.Model) []string {
	t.Helper()
	item, ok := rec.FindModel(parent)
	require.True(t, ok)
	var out []string
	for _, c := range item.Children {
		if c.Checked {
			out = append(out, c.Name)
		}
	}
	return out
}

func TestSetViewRejectsNilAndSecondAttach(t *testing.T) {
	box := NewCheckbox("trace", false)
	testutil.RequireInvariant(t, func() { box.SetView(nil) })

	seq := &testutil.Sequencer{}
	box.SetCheckboxView(&testutil.SeqView{Label: "a", Seq: seq})
	testutil.RequireInvariant(t, func() { box.SetCheckboxView(&testutil.SeqView{Label: "b", Seq: seq}) })
}

func TestSetCheckedIsIdempotent(t *testing.T) {
	root := NewParent("root")
	changes := &changeLog{}
	root.OnChildChanged(changes.record)
	rec := mount(root)

	box := NewCheckbox("trace", false)
	root.AddChild(box)
	rec.Reset()

	box.SetChecked(true)
	box.SetChecked(true)

	assert.Equal(t, 1, rec.Count("set-checked"))
	assert.Equal(t, []string{"trace"}, changes.get())
	assert.True(t, box.Checked())
}

func TestChildChangePulsesParentAccent(t *testing.T) {
	root := NewParent("root")
	rec := mount(root)
	box := NewCheckbox("trace", false)
	root.AddChild(box)

	box.Toggle()
	assert.Equal(t, 1, rec.Count("add-accent"))
	assert.Equal(t, 1, rec.Count("remove-accent"))

	item, ok := rec.FindModel(root)
	require.True(t, ok)
	assert.True(t, item.Accented, "pulse stays visible for a short window")
}

func TestParentEnforcesAddAndRemoveOnce(t *testing.T) {
	detached := NewParent("detached")
	testutil.RequireInvariant(t, func() { detached.AddChild(NewAction("x", nil)) })

	root := NewParent("root")
	mount(root)
	quit := NewAction("quit", nil)
	root.AddChild(quit)
	testutil.RequireInvariant(t, func() { root.AddChild(quit) })

	root.RemoveChild(quit)
	testutil.RequireInvariant(t, func() { root.RemoveChild(quit) })
}

func TestParentStopRemovesChildrenNewestFirst(t *testing.T) {
	root := NewParent("root")
	rec := mount(root)
	for _, name := range []string{"a", "b", "c"} {
		root.AddChild(NewAction(name, nil))
	}
	root.Stop()
	root.Stop()

	var removed []string
	for _, ev := range rec.Ops("remove-child") {
		removed = append(removed, ev.Arg)
	}
	assert.Equal(t, []string{"root/c", "root/b", "root/a"}, removed)
	assert.Equal(t, 0, rec.Live())
}

func TestActionRunsFunction(t *testing.T) {
	var calls int
	a := NewAction("quit", func() { calls++ })
	a.Action()
	a.Action()
	assert.Equal(t, 2, calls)
}

func TestRadioGroupSelectsExactlyOne(t *testing.T) {
	group, err := NewRadioGroup("level", []string{"A", "B", "C"}, "B")
	require.NoError(t, err)
	var selections []string
	group.OnSelect(func(v string) { selections = append(selections, v) })
	changes := &changeLog{}
	group.OnChildChanged(changes.record)
	rec := mount(group)
	require.Equal(t, []string{"B"}, checkedValues(t, rec, group))

	a, _ := group.Box("A")
	a.SetChecked(true)

	assert.Equal(t, []string{"A"}, checkedValues(t, rec, group))
	assert.Equal(t, "A", group.Selected())
	assert.Equal(t, []string{"A"}, selections)
	assert.Equal(t, []string{"A"}, changes.get())
}

func TestRadioGroupRechecksSelectionWhenUnchecked(t *testing.T) {
	group, err := NewRadioGroup("level", []string{"A", "B"}, "A")
	require.NoError(t, err)
	var selections []string
	group.OnSelect(func(v string) { selections = append(selections, v) })
	rec := mount(group)

	a, _ := group.Box("A")
	a.SetChecked(false)

	assert.True(t, a.Checked())
	assert.Equal(t, []string{"A"}, checkedValues(t, rec, group))
	assert.Empty(t, selections)
}

func TestRadioGroupSelectByValue(t *testing.T) {
	group, err := NewRadioGroup("level", []string{"debug", "info"}, "info")
	require.NoError(t, err)
	rec := mount(group)

	require.NoError(t, group.Select("debug"))
	assert.Equal(t, []string{"debug"}, checkedValues(t, rec, group))
	assert.ErrorIs(t, group.Select("trace"), ErrUnknownValue)
}

func TestRadioGroupResolvesChildrenByIdentity(t *testing.T) {
	group, err := NewRadioGroup("level", []string{"A", "B"}, "A")
	require.NoError(t, err)
	mount(group)

	impostor := NewCheckbox("B", true)
	assert.NotPanics(t, func() { group.ChildHasChanged(impostor) })
	assert.Equal(t, "A", group.Selected())
}

func TestGroupsRejectDuplicateValues(t *testing.T) {
	_, err := NewRadioGroup("level", []string{"A", "A"}, "A")
	assert.True(t, errors.Is(err, ErrDuplicateValue))

	_, err = NewRadioGroup("level", []string{"A", "B"}, "C")
	assert.True(t, errors.Is(err, ErrUnknownValue))

	_, err = NewRadioGroup("level", nil, "")
	assert.Error(t, err)

	_, err = NewCheckSet("ext", []string{".txt", ".txt"})
	assert.True(t, errors.Is(err, ErrDuplicateValue))
}

func TestCheckSetAddIsIdempotent(t *testing.T) {
	set, err := NewCheckSet("ext", nil)
	require.NoError(t, err)
	rec := mount(set)

	assert.True(t, set.Add("x"))
	assert.False(t, set.Add("x"))

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 1, rec.Live())
	assert.Len(t, set.Children(), 1)
}

func TestCheckSetMirrorsMembership(t *testing.T) {
	set, err := NewCheckSet("ext", []string{".txt", ".md"})
	require.NoError(t, err)
	var snapshots [][]string
	set.OnChange(func(v []string) { snapshots = append(snapshots, v) })
	rec := mount(set)
	assert.Equal(t, 2, rec.Live())

	assert.True(t, set.Remove(".txt"))
	assert.False(t, set.Remove(".txt"))
	assert.Equal(t, 1, rec.Count("remove-child"))
	assert.Equal(t, []string{".md"}, set.Values())
	assert.Equal(t, [][]string{{".md"}}, snapshots)
}

func TestUncheckingCheckSetMemberRemovesIt(t *testing.T) {
	set, err := NewCheckSet("ext", []string{".txt", ".md"})
	require.NoError(t, err)
	rec := mount(set)

	box := set.Children()[0].(*Checkbox)
	box.SetChecked(false)

	assert.False(t, set.Contains(".txt"))
	assert.Equal(t, []string{".md"}, set.Values())
	assert.Equal(t, 1, rec.Live())
}

func TestCheckSetBeforeAttachDefersWidgets(t *testing.T) {
	set, err := NewCheckSet("ext", nil)
	require.NoError(t, err)
	set.Add(".csv")
	set.Add(".log")

	rec := mount(set)
	item, ok := rec.FindModel(set)
	require.True(t, ok)
	require.Len(t, item.Children, 2)
	assert.Equal(t, ".csv", item.Children[0].Name)
	assert.True(t, item.Children[1].Checked)
}
