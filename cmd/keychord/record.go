package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/keychord/internal/app"
)

func recordCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record a shortcut in the terminal",
		Long: `Open a full-screen capture field in the terminal. Press a shortcut to
record it; press Esc on its own to quit. The last committed shortcut is
printed on exit.

Terminals report each chord as a single event, so modifiers are inferred
from the event and the press/release sequence is reconstructed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return app.NewOperationError("record", "", app.ErrNoTerminal).WithContext("stdin and stdout must be a TTY")
			}

			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating terminal screen: %w", err)
			}

			value, err := a.Record(cmd.Context(), screen)
			if err != nil && !errors.Is(err, cmd.Context().Err()) {
				return err
			}
			if value != "" {
				fmt.Fprintln(cmd.OutOrStdout(), value)
			}
			return nil
		},
	}
}
