package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [source]",
	Short: "List the expanded requests",
	Long: `Show every request a build would send, one per parameter set, with
its resolved URL and destination.

Examples:
  hitpull list
  hitpull list -v
  hitpull list -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	p, err := loadProject(args, overrides{})
	if err != nil {
		return err
	}
	return planProject(p, formatter)
}
