package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

// AssertGolden compares a rendering with testdata/<goldenName> at the
// module root. Escape sequences and trailing blanks are ignored so styled
// and plain renderings share one file. Setting UPDATE_GOLDEN rewrites it.
func AssertGolden(t *testing.T, goldenName, output string) {
	t.Helper()
	got := normalizeRendering(output)
	path := filepath.Join(RepoRoot(t), "testdata", goldenName)
	if os.Getenv("UPDATE_GOLDEN") != "" {
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to update golden: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden %s: %v", goldenName, err)
	}
	want := normalizeRendering(string(data))
	if want == got {
		return
	}
	line, wantLine, gotLine := firstDifference(want, got)
	t.Fatalf("%s differs at line %d\nwant: %q\ngot:  %q\nfull rendering:\n%s", goldenName, line, wantLine, gotLine, got)
}

func normalizeRendering(s string) string {
	lines := strings.Split(strings.TrimRight(ansi.Strip(s), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n") + "\n"
}

func firstDifference(want, got string) (int, string, string) {
	w, g := strings.Split(want, "\n"), strings.Split(got, "\n")
	for i := 0; i < max(len(w), len(g)); i++ {
		var a, b string
		if i < len(w) {
			a = w[i]
		}
		if i < len(g) {
			b = g[i]
		}
		if a != b {
			return i + 1, a, b
		}
	}
	return 0, "", ""
}

// RepoRoot returns the nearest ancestor of the working directory holding
// go.mod, or the filesystem root when there is none.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	for dir != filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return dir
}
