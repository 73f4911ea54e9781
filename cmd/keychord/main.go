// Package main is the entry point for the keychord shortcut recorder.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	opts app.Options
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "keychord",
		Short: "Record keyboard shortcuts from physical key presses",
		Long: `keychord records a keyboard shortcut such as Control+Shift+K from the
keys you actually press.

A shortcut is valid when at least one modifier and exactly one other key
are held. Once a valid shortcut has been captured it stays on display until
a new valid one replaces it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.opts.ConfigPath, "config", "c", "", "Path to configuration file")
	pf.StringSliceVar(&g.opts.Modifiers, "modifiers", nil, "Modifier keys (e.g. Control,Shift,Alt)")
	pf.StringVar(&g.opts.Initial, "initial", "", "Initial shortcut value")
	pf.StringVar(&g.opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&g.opts.LogFile, "log-file", "", "Write logs to this file")
	pf.BoolVar(&g.opts.Watch, "watch", false, "Reload the configuration file when it changes")

	root.AddCommand(
		recordCmd(g),
		serveCmd(g),
		replayCmd(g),
		versionCmd(),
	)
	return root
}

// newApp builds the application from the global flags.
func (g *globalFlags) newApp() (*app.Application, error) {
	return app.New(g.opts)
}
