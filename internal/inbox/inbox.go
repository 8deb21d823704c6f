// Package inbox discovers files waiting in a directory and archives them.
// Each file with an accepted extension becomes one scheduler work item.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/mv"
	"github.com/atomicstack/multiview/internal/scheduler"
)

// Config locates the inbox and the archive.
type Config struct {
	Dir     string
	Archive string
	// Extensions returns the accepted extensions at discovery time.
	Extensions func() []string
}

// NormalizeExtension lower-cases ext and makes sure it starts with a dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// New returns a scheduler named name working through cfg's inbox.
func New(name string, cfg Config, sched scheduler.Config) *scheduler.Scheduler {
	return scheduler.New(name, sched, Discover(cfg))
}

// Discover lists the inbox on every call. Files are returned sorted by name.
func Discover(cfg Config) scheduler.DiscoverFunc {
	return func(ctx context.Context) ([]scheduler.Item, error) {
		accepted := make(map[string]struct{})
		if cfg.Extensions != nil {
			for _, ext := range cfg.Extensions() {
				if ext = NormalizeExtension(ext); ext != "" {
					accepted[ext] = struct{}{}
				}
			}
		}
		if len(accepted) == 0 {
			return nil, nil
		}
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("read inbox: %w", err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			if _, ok := accepted[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		logging.Debug("inbox discovered", "dir", cfg.Dir, "files", len(names))

		items := make([]scheduler.Item, 0, len(names))
		for _, name := range names {
			items = append(items, newFile(cfg, name))
		}
		return items, ctx.Err()
	}
}

// file is one inbox entry. It shows a type icon once attached.
type file struct {
	*scheduler.Step
	icon mv.Icon
}

func newFile(cfg Config, name string) *file {
	src := filepath.Join(cfg.Dir, name)
	dst := filepath.Join(cfg.Archive, name)
	return &file{
		Step: scheduler.NewStep(name,
			func() bool { return archived(dst) },
			func(ctx context.Context) error { return move(ctx, src, dst) },
		),
		icon: iconFor(name),
	}
}

func (f *file) SetView(v mv.View) {
	f.Step.SetView(v)
	v.SetIcon(f.icon)
}

func iconFor(name string) mv.Icon {
	glyph := "≡"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml", ".toml":
		glyph = "{"
	case ".png", ".jpg", ".jpeg", ".gif":
		glyph = "▣"
	}
	return mv.Icon{Name: "file", Glyph: glyph, Width: 16, Height: 16}
}

func archived(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil
}

// move renames src into the archive, copying when they sit on different
// filesystems.
func move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("archive %s: %w", filepath.Base(src), err)
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("archive %s: %w", filepath.Base(src), err)
	}
	return os.Remove(src)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.CreateTemp(filepath.Dir(dst), ".archive-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(out.Name())
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Rename(out.Name(), dst)
}
