// Package app wires configuration, logging and the capture hosts together
// for the keychord command.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/config"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/script"
	"github.com/dshills/keychord/internal/term"
	"github.com/dshills/keychord/internal/web"
)

// Options are the command-line settings. Non-empty values override the
// configuration file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Modifiers overrides the modifier set.
	Modifiers []string

	// Initial overrides the initial shortcut.
	Initial string

	// LogLevel overrides logging.level.
	LogLevel string

	// LogFile overrides logging.file.
	LogFile string

	// Addr overrides server.addr.
	Addr string

	// NoMetrics disables the /metrics endpoint.
	NoMetrics bool

	// Watch reloads the configuration file when it changes.
	Watch bool
}

// Application holds the resolved configuration and the shared logger.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *logging.Logger

	mu      sync.Mutex
	logFile *os.File
	watcher *config.Watcher
}

// New loads the configuration and applies the command-line overrides.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, NewOperationError("load config", opts.ConfigPath, err)
	}
	if err := opts.apply(cfg); err != nil {
		return nil, NewOperationError("apply flags", "", err)
	}
	return &Application{opts: opts, cfg: cfg}, nil
}

// Config returns the resolved configuration.
func (a *Application) Config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// apply overlays the command-line settings onto cfg and revalidates it.
func (o Options) apply(cfg *config.Config) error {
	if len(o.Modifiers) > 0 {
		cfg.Modifiers = append([]string(nil), o.Modifiers...)
	}
	if o.Initial != "" {
		cfg.Initial = o.Initial
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.NoMetrics {
		cfg.Server.Metrics = false
	}
	return cfg.Validate()
}

// initLogging builds the process logger. Output goes to the configured
// log file, or to fallback when none is set.
func (a *Application) initLogging(fallback io.Writer) error {
	out := fallback
	if path := a.cfg.Logging.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return NewOperationError("open log file", path, err)
		}
		a.logFile = f
		out = f
	}

	a.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(a.cfg.Logging.Level),
		Output: out,
		Prefix: "keychord",
	})
	logging.Set(a.logger)
	return nil
}

// watch starts the configuration watcher when requested. onModifiers
// receives every reloaded modifier set.
func (a *Application) watch(ctx context.Context, onModifiers func(key.ModifierSet)) error {
	if !a.opts.Watch || a.opts.ConfigPath == "" {
		return nil
	}

	w, err := config.NewWatcher(a.opts.ConfigPath, func(cfg *config.Config) {
		if err := a.opts.apply(cfg); err != nil {
			a.logger.Warn("ignoring reloaded config: %v", err)
			return
		}
		mods, err := cfg.ModifierSet()
		if err != nil {
			a.logger.Warn("ignoring reloaded config: %v", err)
			return
		}
		a.logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
		a.mu.Lock()
		a.cfg = cfg
		a.mu.Unlock()
		onModifiers(mods)
	}, config.WithWatcherLogger(a.logger))
	if err != nil {
		return NewOperationError("watch config", a.opts.ConfigPath, err)
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Close()
		return NewOperationError("watch config", a.opts.ConfigPath, err)
	}
	a.watcher = w
	return nil
}

// newRecorder builds a recorder from the current configuration, seeded
// with the initial value if one is set.
func (a *Application) newRecorder() (*capture.Recorder, error) {
	mods, err := a.cfg.ModifierSet()
	if err != nil {
		return nil, err
	}
	initial, err := a.cfg.InitialValue()
	if err != nil {
		return nil, err
	}
	rec := capture.NewRecorder(mods, capture.WithLogger(a.logger))
	if initial != "" {
		rec.WriteValue(initial)
	}
	return rec, nil
}

// Record runs the terminal host on screen and returns the committed value.
// Logs are discarded unless a log file is configured, since the terminal
// is the screen.
func (a *Application) Record(ctx context.Context, screen tcell.Screen) (string, error) {
	if err := a.initLogging(io.Discard); err != nil {
		return "", err
	}

	rec, err := a.newRecorder()
	if err != nil {
		return "", NewOperationError("record", "", err)
	}
	valid, invalid, err := a.cfg.Colors()
	if err != nil {
		return "", NewOperationError("record", "", err)
	}

	host := term.New(screen, rec, term.WithColors(valid, invalid), term.WithLogger(a.logger))
	if err := host.Init(); err != nil {
		return "", NewOperationError("record", "terminal", err)
	}

	if err := a.watch(ctx, func(mods key.ModifierSet) {
		if err := host.SetModifiers(mods); err != nil {
			a.logger.Warn("applying modifiers: %v", err)
		}
	}); err != nil {
		screen.Fini()
		return "", err
	}

	value, err := host.Run(ctx)
	if err != nil {
		return value, NewOperationError("record", "", err)
	}
	return value, nil
}

// Serve runs the browser host until ctx is canceled.
func (a *Application) Serve(ctx context.Context, logOut io.Writer) error {
	if err := a.initLogging(logOut); err != nil {
		return err
	}

	mods, err := a.cfg.ModifierSet()
	if err != nil {
		return NewOperationError("serve", "", err)
	}
	initial, err := a.cfg.InitialValue()
	if err != nil {
		return NewOperationError("serve", "", err)
	}

	srv := web.New(web.Config{
		Addr:            a.cfg.Server.Addr,
		Modifiers:       mods,
		Initial:         initial,
		Metrics:         a.cfg.Server.Metrics,
		AllowedOrigins:  a.cfg.Server.AllowedOrigins,
		ReadBufferSize:  a.cfg.Server.ReadBufferSize,
		WriteBufferSize: a.cfg.Server.WriteBufferSize,
		Logger:          a.logger,
	})

	if err := a.watch(ctx, srv.SetModifiers); err != nil {
		return err
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		return NewOperationError("serve", a.cfg.Server.Addr, err)
	}
	return nil
}

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Files are YAML or Lua scenario files.
	Files []string

	// Filter restricts scenarios by name glob.
	Filter string

	// Pretty indents the trace.
	Pretty bool

	// Trace receives JSON trace lines. Nil discards them.
	Trace io.Writer

	// Summary receives one PASS/FAIL line per scenario. Nil discards it.
	Summary io.Writer
}

// Replay runs every scenario in opts.Files. It returns ErrReplayFailed
// (wrapped) when any expectation failed.
func (a *Application) Replay(ctx context.Context, logOut io.Writer, opts ReplayOptions) ([]*script.Result, error) {
	if len(opts.Files) == 0 {
		return nil, ErrNoScenarios
	}
	if err := a.initLogging(logOut); err != nil {
		return nil, err
	}

	mods, err := a.cfg.ModifierSet()
	if err != nil {
		return nil, NewOperationError("replay", "", err)
	}
	trace, summary := opts.Trace, opts.Summary
	if trace == nil {
		trace = io.Discard
	}
	if summary == nil {
		summary = io.Discard
	}

	runner := script.NewRunner(
		script.WithModifiers(mods),
		script.WithTrace(trace),
		script.WithPretty(opts.Pretty),
		script.WithFilter(opts.Filter),
		script.WithRunnerLogger(a.logger),
	)

	var all []*script.Result
	failed := 0
	for _, path := range opts.Files {
		results, err := runner.RunFile(ctx, path)
		all = append(all, results...)
		if err != nil {
			return all, NewOperationError("replay", path, err)
		}
		for _, res := range results {
			if res.Passed() {
				fmt.Fprintf(summary, "PASS %s (%d steps)\n", res.Name, res.Steps)
				continue
			}
			failed++
			fmt.Fprintf(summary, "FAIL %s\n", res.Name)
			for _, f := range res.Failures {
				fmt.Fprintf(summary, "    %v\n", f)
			}
		}
	}

	if failed > 0 {
		return all, fmt.Errorf("%w: %d of %d scenarios", ErrReplayFailed, failed, len(all))
	}
	return all, nil
}

// Close stops the watcher and closes the log file.
func (a *Application) Close() error {
	var firstErr error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			firstErr = err
		}
		a.watcher = nil
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.logFile = nil
	}
	return firstErr
}
