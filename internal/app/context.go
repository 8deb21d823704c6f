package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atomicstack/multiview/internal/dispatch"
	"github.com/atomicstack/multiview/internal/inbox"
	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/logging/events"
	"github.com/atomicstack/multiview/internal/model"
	"github.com/atomicstack/multiview/internal/pool"
	"github.com/atomicstack/multiview/internal/render/menu"
	"github.com/atomicstack/multiview/internal/render/tree"
	"github.com/atomicstack/multiview/internal/scheduler"
	"github.com/jonboulle/clockwork"
)

// RootName names the top of the model tree.
const RootName = "multiview"

// LogLevels are the choices offered by the log level group.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Context holds the process-wide pieces: the pool every background task
// goes through, both rendering backends and the mounted model tree.
type Context struct {
	Pool *pool.Pool
	Tree *tree.Backend
	Menu *menu.Backend

	Root       *model.Parent
	Inbox      *scheduler.Scheduler
	Extensions *model.CheckSet
	LogLevel   *model.RadioGroup
	Trace      *model.Checkbox
	Quit       *model.Action

	done   context.Context
	cancel context.CancelFunc
}

// New builds the pool and backends and mounts the model tree onto both.
// Attaching the inbox scheduler starts its timer.
func New(cfg Config, clock clockwork.Clock) (*Context, error) {
	if err := cfg.Pool.Validate(); err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	if cfg.Inbox != "" {
		if err := os.MkdirAll(cfg.Inbox, 0o755); err != nil {
			return nil, fmt.Errorf("create inbox: %w", err)
		}
	}
	exts := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		if ext = inbox.NormalizeExtension(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	extSet, err := model.NewCheckSet("Extensions", exts)
	if err != nil {
		return nil, err
	}
	level := strings.ToLower(logging.ParseLevel(cfg.LogLevel).String())
	levels, err := model.NewRadioGroup("Log level", LogLevels, level)
	if err != nil {
		return nil, err
	}

	done, cancel := context.WithCancel(context.Background())
	c := &Context{
		Pool:       pool.New(cfg.Pool),
		Tree:       tree.New(),
		Menu:       menu.New(),
		Root:       model.NewParent(RootName),
		Extensions: extSet,
		LogLevel:   levels,
		Trace:      model.NewCheckbox("Trace", cfg.Trace),
		done:       done,
		cancel:     cancel,
	}
	c.Quit = model.NewAction("Quit", func() { c.Shutdown("quit") })
	c.Inbox = inbox.New("Inbox", inbox.Config{
		Dir:        cfg.Inbox,
		Archive:    cfg.Archive,
		Extensions: extSet.Values,
	}, scheduler.Config{
		Delay:     cfg.Delay,
		Interval:  cfg.Interval,
		Clock:     clock,
		Submitter: c.Pool,
	})

	levels.OnSelect(func(name string) {
		logging.SetLevel(name)
		logging.Info("log level changed", "level", name)
	})
	c.Trace.OnToggle(logging.SetTraceEnabled)
	extSet.OnChange(func(values []string) {
		logging.Info("extensions changed", "extensions", values)
	})

	dispatch.Mount(c.Pool, c.Root, c.Tree.Root(c.Root), c.Menu.Root(c.Root))
	events.App.Mount(RootName, []string{c.Tree.Name(), c.Menu.Name()})
	if cfg.Inbox != "" {
		c.Root.AddChild(c.Inbox)
	}
	c.Root.AddChild(extSet)
	c.Root.AddChild(levels)
	c.Root.AddChild(c.Trace)
	c.Root.AddChild(c.Quit)
	return c, nil
}

// Done is closed once Shutdown has been requested.
func (c *Context) Done() <-chan struct{} {
	return c.done.Done()
}

// Shutdown asks everything started from this context to wind down. It can
// be called any number of times.
func (c *Context) Shutdown(reason string) {
	if c.done.Err() == nil {
		events.App.Stop(reason)
	}
	c.cancel()
}

// Close detaches the model tree, which stops the scheduler, then drains
// the pool.
func (c *Context) Close(ctx context.Context) error {
	c.Shutdown("close")
	c.Root.Stop()
	if err := c.Pool.Shutdown(ctx); err != nil {
		return err
	}
	stats := c.Pool.Stats()
	logging.Debug("pool drained", "submitted", stats.Submitted, "caller_ran", stats.CallerRan, "panics", stats.Panics)
	return nil
}

// closeTimeout bounds how long Close waits for queued work.
const closeTimeout = 5 * time.Second

func closeWithTimeout(c *Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := c.Close(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logging.Warn("pool did not drain in time", "timeout", closeTimeout.String())
	}
	return err
}
