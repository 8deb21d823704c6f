package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/scheduler"
	"github.com/atomicstack/multiview/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
}

func exts(list ...string) func() []string {
	return func() []string { return list }
}

func names(items []scheduler.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	return out
}

func childNames(s *scheduler.Scheduler) []string {
	var out []string
	for _, c := range s.Children() {
		out = append(out, c.Name())
	}
	return out
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".csv", NormalizeExtension("CSV"))
	assert.Equal(t, ".csv", NormalizeExtension(" .csv "))
	assert.Equal(t, "", NormalizeExtension("  "))
}

func TestDiscoverFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.csv")
	touch(t, dir, "a.CSV")
	touch(t, dir, "notes.txt")
	touch(t, dir, "README")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	items, err := Discover(Config{Dir: dir, Extensions: exts("csv")})(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.CSV", "b.csv"}, names(items))
}

func TestDiscoverWithoutExtensionsFindsNothing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	items, err := Discover(Config{Dir: dir, Extensions: exts()})(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDiscoverReportsMissingInbox(t *testing.T) {
	_, err := Discover(Config{Dir: filepath.Join(t.TempDir(), "gone"), Extensions: exts(".csv")})(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverSeesExtensionChanges(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.csv")
	touch(t, dir, "b.json")
	accepted := []string{".csv"}
	discover := Discover(Config{Dir: dir, Extensions: func() []string { return accepted }})

	items, err := discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, names(items))

	accepted = append(accepted, ".json")
	items, err = discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.json"}, names(items))
}

func TestCycleArchivesFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "inbox")
	archive := filepath.Join(root, "archive")
	touch(t, dir, "a.csv")
	touch(t, dir, "b.txt")
	touch(t, dir, "c.csv")
	touch(t, archive, "c.csv")

	s := New("Inbox", Config{Dir: dir, Archive: archive, Extensions: exts(".csv")},
		scheduler.Config{Clock: clockwork.NewFakeClock()})
	report, err := s.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]scheduler.Outcome{"a.csv": scheduler.Done, "c.csv": scheduler.Skipped}, report.Outcomes())

	assert.FileExists(t, filepath.Join(archive, "a.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
	assert.FileExists(t, filepath.Join(dir, "b.txt"))

	report, err = s.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]scheduler.Outcome{"c.csv": scheduler.Skipped}, report.Outcomes())
}

func TestCycleShowsFilesWhileRunning(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "inbox")
	touch(t, dir, "a.csv")
	touch(t, dir, "b.json")

	rec := testutil.NewRecorder("menu")
	top := model.NewParent("multiview")
	dispatch.Mount(nil, top, rec.Root(top))
	s := New("Inbox", Config{Dir: dir, Archive: filepath.Join(root, "archive"), Extensions: exts(".csv", ".json")},
		scheduler.Config{Clock: clockwork.NewFakeClock(), Delay: time.Hour})
	top.AddChild(s)
	t.Cleanup(s.Stop)

	_, err := s.Cycle(context.Background())
	require.NoError(t, err)

	added := rec.Ops("add-child")
	var files []string
	for _, ev := range added {
		if ev.Arg == "a.csv" || ev.Arg == "b.json" {
			files = append(files, ev.Arg)
		}
	}
	assert.Equal(t, []string{"a.csv", "b.json"}, files)
	assert.Equal(t, 2, rec.Count("set-icon"))
	assert.GreaterOrEqual(t, rec.Count("remove-child"), 2)
	assert.Equal(t, []string{scheduler.RunNowLabel}, childNames(s))
}

func TestMoveHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := move(ctx, filepath.Join(root, "a.csv"), filepath.Join(root, "archive", "a.csv"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, filepath.Join(root, "a.csv"))
}

func TestCopyFileReplacesDestination(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.csv")
	dst := filepath.Join(root, "out.csv")
	require.NoError(t, copyFile(filepath.Join(root, "a.csv"), dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", string(data))
}
