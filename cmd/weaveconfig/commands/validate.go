package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCommand implements `weaveconfig validate`: runs discovery
// through resolution and reports errors, but never writes a gen/ tree.
func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve spaces without writing gen/ artifacts",
		Long: `Run discovery, parsing, graph construction, and variable resolution
against the workspace root, reporting every error found, without writing
any gen/ output. Useful in CI to fail fast on a misconfigured monorepo
without touching the working tree.`,
		Example: `  # Validate the current directory's weaveconfig root
  weaveconfig validate

  # Validate a different root
  weaveconfig validate --root ./monorepo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runPipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			fmt.Printf("%d space(s) valid\n", result.SpacesDiscovered)
			return nil
		},
	}
	return cmd
}
