package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lintbridge version and the arduino-lint version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := a.cfg.NewRunner(a.logger)

			fmt.Fprintf(a.stdout, "lintbridge %s\n", a.version)
			switch v, ok := r.Version(cmd.Context()); {
			case ok:
				fmt.Fprintf(a.stdout, "arduino-lint %s (%s)\n", v, r.Path())
			case r.IsAvailable():
				fmt.Fprintf(a.stdout, "arduino-lint version unknown (%s)\n", r.Path())
			default:
				fmt.Fprintf(a.stdout, "arduino-lint not installed (%s)\n", r.Path())
			}
			return nil
		},
	}
}
