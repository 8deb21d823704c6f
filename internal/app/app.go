// Package app wires the model tree, the rendering backends and the Bubble
// Tea program together and runs them until the user quits.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/atomicstack/multiview/internal/logging"
	"github.com/atomicstack/multiview/internal/pool"
	"github.com/atomicstack/multiview/internal/ui"
	"github.com/atomicstack/multiview/internal/watch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Config describes user-provided application options.
type Config struct {
	Pool       pool.Config
	Delay      time.Duration
	Interval   time.Duration
	Inbox      string
	Archive    string
	Extensions []string
	LogLevel   string
	Trace      bool

	Width       int
	Height      int
	Footer      bool
	Refresh     time.Duration
	MetricsAddr string
}

// Run builds the application context and runs the UI, the inbox watcher
// and the optional metrics endpoint until one of them ends.
func Run(ctx context.Context, cfg Config) error {
	c, err := New(cfg, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	defer func() {
		if err := closeWithTimeout(c); err != nil {
			logging.Error(err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	model := ui.NewModel(ui.Options{
		Tree:      c.Tree,
		Menu:      c.Menu,
		Submitter: c.Pool,
		Tracker:   c.Pool.Tracker(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Footer:    cfg.Footer,
		Refresh:   cfg.Refresh,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	if cfg.Inbox != "" {
		w := watch.New(watch.Config{
			Dir:     cfg.Inbox,
			Trigger: func() { c.Inbox.Trigger() },
		})
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				logging.Error(err)
				c.Inbox.ReportWarning("not watching: " + err.Error())
			}
			return nil
		})
	}

	if cfg.MetricsAddr != "" {
		srv := metricsServer(cfg.MetricsAddr)
		g.Go(func() error {
			logging.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), closeTimeout)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
