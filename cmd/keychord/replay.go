package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/keychord/internal/app"
)

func replayCmd(g *globalFlags) *cobra.Command {
	var (
		filter string
		pretty bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "replay [flags] files...",
		Short: "Replay YAML or Lua scenarios",
		Long: `Replay recorded key sequences and check their expectations.

YAML files (.yaml, .yml) hold one or more scenarios; Lua files (.lua) are
scripts driving the recorder directly. Every operation is written to stdout
as a JSON line and a PASS/FAIL summary goes to stderr. The command fails if
any expectation fails.`,
		Example: `  keychord replay testdata/capture.yaml
  keychord replay --run 'scenario-*' --pretty testdata/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			opts := app.ReplayOptions{
				Files:   args,
				Filter:  filter,
				Pretty:  pretty,
				Summary: cmd.ErrOrStderr(),
			}
			if !quiet {
				opts.Trace = cmd.OutOrStdout()
			}
			_, err = a.Replay(cmd.Context(), cmd.ErrOrStderr(), opts)
			return err
		},
	}

	cmd.Flags().StringVar(&filter, "run", "", "Only run scenarios whose name matches this glob")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON trace")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the trace")
	return cmd
}
