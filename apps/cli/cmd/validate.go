package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [source]",
	Short: "Check requests without sending them",
	Long: `Load the config and source tree and normalize every request, reporting
each invalid URL, method or out setting. Nothing is sent.

Examples:
  hitpull validate
  hitpull validate content --config site/hitpull.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	p, err := loadProject(args, overrides{})
	if err != nil {
		return err
	}
	st, err := p.loadStore()
	if err != nil {
		return err
	}
	r, err := p.runner()
	if err != nil {
		return err
	}

	errs := r.Validate(st)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "Invalid: %v\n", e)
	}
	if len(errs) > 0 {
		return withExitCode(ExitRequestError, fmt.Errorf("validation failed: %d invalid request(s)", len(errs)))
	}

	descs, _ := r.Plan(st)
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %d request(s) from %d artifact(s)\n", len(descs), len(st.Files))
	return nil
}
