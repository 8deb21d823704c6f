package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/multiview/internal/app"
	"github.com/atomicstack/multiview/internal/pool"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	EnvFile string
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
	Level    string
}

const (
	envEnvFile     = "MULTIVIEW_ENV_FILE"
	envLogFile     = "MULTIVIEW_LOG_FILE"
	envTrace       = "MULTIVIEW_TRACE"
	envLogLevel    = "MULTIVIEW_LOG_LEVEL"
	envPoolMin     = "MULTIVIEW_POOL_MIN"
	envPoolMax     = "MULTIVIEW_POOL_MAX"
	envPoolQueue   = "MULTIVIEW_POOL_QUEUE"
	envPoolIdle    = "MULTIVIEW_POOL_IDLE"
	envDelay       = "MULTIVIEW_DELAY"
	envInterval    = "MULTIVIEW_INTERVAL"
	envInbox       = "MULTIVIEW_INBOX"
	envArchive     = "MULTIVIEW_ARCHIVE"
	envExtensions  = "MULTIVIEW_EXTENSIONS"
	envWidth       = "MULTIVIEW_WIDTH"
	envHeight      = "MULTIVIEW_HEIGHT"
	envShowFooter  = "MULTIVIEW_FOOTER"
	envRefresh     = "MULTIVIEW_REFRESH"
	envMetricsAddr = "MULTIVIEW_METRICS_ADDR"

	defaultEnvFile    = ".env"
	defaultExtensions = ".csv,.json,.txt"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values from
// the env file fill in variables the environment does not set.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	envFile := envFileFromArgs(args, envOrDefault(env, envEnvFile, defaultEnvFile))
	fileEnv, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	for k, v := range fileEnv {
		if _, ok := env[k]; !ok {
			env[k] = v
		}
	}

	defaults := pool.DefaultConfig()
	fs := flag.NewFlagSet("multiview", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("env-file", envFile, "path to a .env file with MULTIVIEW_* settings (missing file is ignored)")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logLevel := fs.String("log-level", envOrDefault(env, envLogLevel, "info"), "minimum log level (debug, info, warn, error)")
	poolMin := fs.Int("pool-min", envOrInt(env, envPoolMin, defaults.MinWorkers), "workers kept alive")
	poolMax := fs.Int("pool-max", envOrInt(env, envPoolMax, defaults.MaxWorkers), "upper bound on workers")
	poolQueue := fs.Int("pool-queue", envOrInt(env, envPoolQueue, defaults.QueueSize), "tasks buffered before extra workers start")
	poolIdle := fs.Duration("pool-idle", envOrDuration(env, envPoolIdle, defaults.IdleTimeout), "idle time before an extra worker exits")
	delay := fs.Duration("delay", envOrDuration(env, envDelay, 2*time.Second), "wait before the first inbox scan")
	interval := fs.Duration("interval", envOrDuration(env, envInterval, time.Minute), "time between inbox scans (0 scans once)")
	inboxDir := fs.String("inbox", envOrDefault(env, envInbox, ""), "directory to collect files from (empty disables the inbox)")
	archive := fs.String("archive", envOrDefault(env, envArchive, ""), "directory collected files are moved to (defaults to <inbox>/archive)")
	extensions := fs.String("extensions", envOrDefault(env, envExtensions, defaultExtensions), "comma separated file extensions to collect")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer with running tasks and key hints")
	refresh := fs.Duration("refresh", envOrDuration(env, envRefresh, time.Second), "redraw interval for pulses and the footer (0 disables)")
	metricsAddr := fs.String("metrics-addr", envOrDefault(env, envMetricsAddr, ""), "serve Prometheus metrics on this address (empty disables)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	archiveDir := *archive
	if archiveDir == "" && *inboxDir != "" {
		archiveDir = filepath.Join(*inboxDir, "archive")
	}

	cfg := Config{
		App: app.Config{
			Pool: pool.Config{
				MinWorkers:  *poolMin,
				MaxWorkers:  *poolMax,
				QueueSize:   *poolQueue,
				IdleTimeout: *poolIdle,
			},
			Delay:       *delay,
			Interval:    *interval,
			Inbox:       *inboxDir,
			Archive:     archiveDir,
			Extensions:  splitList(*extensions),
			LogLevel:    *logLevel,
			Trace:       *trace,
			Width:       *width,
			Height:      *height,
			Footer:      *footer,
			Refresh:     *refresh,
			MetricsAddr: *metricsAddr,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
			Level:    *logLevel,
		},
		EnvFile: envFile,
		Flags: map[string]string{
			"envFile":     envFile,
			"logLevel":    *logLevel,
			"poolMin":     strconv.Itoa(*poolMin),
			"poolMax":     strconv.Itoa(*poolMax),
			"poolQueue":   strconv.Itoa(*poolQueue),
			"poolIdle":    poolIdle.String(),
			"delay":       delay.String(),
			"interval":    interval.String(),
			"inbox":       *inboxDir,
			"archive":     archiveDir,
			"extensions":  *extensions,
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"refresh":     refresh.String(),
			"metricsAddr": *metricsAddr,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// envFileFromArgs finds --env-file before the flag set runs, since the file
// supplies the flag defaults.
func envFileFromArgs(args []string, fallback string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "env-file="); ok {
			return value
		}
		if name == "env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

func readEnvFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects settings the application cannot start with.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if err := a.Pool.Validate(); err != nil {
		return err
	}
	if a.Delay < 0 {
		return fmt.Errorf("delay must be >= 0 (got %s)", a.Delay)
	}
	if a.Interval < 0 {
		return fmt.Errorf("interval must be >= 0 (got %s)", a.Interval)
	}
	if a.Refresh < 0 {
		return fmt.Errorf("refresh must be >= 0 (got %s)", a.Refresh)
	}
	if !knownLevel(cfg.Logging.Level) {
		return fmt.Errorf("unknown log level %q", cfg.Logging.Level)
	}
	if a.Inbox != "" && a.Inbox == a.Archive {
		return fmt.Errorf("archive must differ from inbox (%s)", a.Inbox)
	}
	return nil
}

func knownLevel(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == "warning" || slices.Contains(app.LogLevels, name)
}
