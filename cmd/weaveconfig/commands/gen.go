package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newGenCommand implements `weaveconfig gen` (and the bare `weaveconfig`
// default): run the full five-stage pipeline against rootPath, writing
// gen/ trees into every space that requests generation.
func newGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Resolve spaces and write gen/ artifacts",
		Long: `Discover every space under the workspace root, parse and validate
its marker and variable files, build the parent/dependency graph, resolve
variables across environment remappings, and emit gen/config.json,
gen/.gitignore, and (when requested) gen/binding.ts for every space whose
generate setting is enabled.`,
		Example: `  # Resolve the current directory's weaveconfig root
  weaveconfig gen

  # Resolve a different root
  weaveconfig gen --root ./monorepo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, args)
		},
	}
	return cmd
}

func runGen(cmd *cobra.Command, _ []string) error {
	result, err := runPipeline(cmd.Context(), true)
	if err != nil {
		return err
	}
	fmt.Printf("resolved %d space(s) from %s\n", result.SpacesDiscovered, rootPath)
	return nil
}
