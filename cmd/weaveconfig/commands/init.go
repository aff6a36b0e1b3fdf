package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/weaveconfig/weaveconfig/pkg/spacefile"
)

const rootMarkerTemplate = `{
  // The root space. Its environments are the set of values the ENV
  // runtime variable may take for anything with no closer parent.
  "name": "root",
  "environments": ["dev", "staging", "prod"],
  "generate": false,
}
`

const rootSharedVarsTemplate = `{
  "region": "us-east-1",
}
`

const exampleSpaceMarkerTemplate = `{
  "name": "example",
  "environments": ["dev", "staging", "prod"],
  "generate": {
    "typescript": true,
  },
}
`

const exampleSpaceEnvTemplate = `{
  "port": %d,
}
`

// newInitCommand implements `weaveconfig init`: scaffold an empty
// weaveconfig directory with a root _space.jsonc, each step
// acknowledged with a "✓ ..." progress line.
func newInitCommand() *cobra.Command {
	var withExample bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new weaveconfig workspace",
		Long: `Initialize a weaveconfig workspace: a root _space.jsonc declaring
the top-level environments, plus a shared-variables file. With
--example, also scaffold a child space depending on nothing, to serve
as a starting point for real spaces.`,
		Example: `  # Scaffold the workspace root
  weaveconfig init --root .

  # Also scaffold an example child space
  weaveconfig init --root . --example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootPath, withExample)
		},
	}

	cmd.Flags().BoolVar(&withExample, "example", false, "also scaffold an example child space")
	return cmd
}

func runInit(root string, withExample bool) error {
	log.Info().Str("root", root).Bool("example", withExample).Msg("initializing workspace")

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", root, err)
	}

	markerPath := filepath.Join(root, spacefile.MarkerFileName)
	if err := writeIfAbsent(markerPath, rootMarkerTemplate); err != nil {
		return err
	}

	sharedPath := filepath.Join(root, spacefile.SharedVarFileName)
	if err := writeIfAbsent(sharedPath, rootSharedVarsTemplate); err != nil {
		return err
	}

	toolConfigPath := filepath.Join(root, toolConfigFileName)
	if err := writeIfAbsent(toolConfigPath, defaultToolConfigTemplate); err != nil {
		return err
	}

	fmt.Printf("initialized weaveconfig workspace in %s\n\n", root)
	fmt.Printf("✓ created %s\n", markerPath)
	fmt.Printf("✓ created %s\n", sharedPath)
	fmt.Printf("✓ created %s\n", toolConfigPath)

	if withExample {
		exampleDir := filepath.Join(root, "example")
		if err := os.MkdirAll(exampleDir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", exampleDir, err)
		}
		exMarker := filepath.Join(exampleDir, spacefile.MarkerFileName)
		if err := writeIfAbsent(exMarker, exampleSpaceMarkerTemplate); err != nil {
			return err
		}
		exDev := filepath.Join(exampleDir, "_dev.env.jsonc")
		if err := writeIfAbsent(exDev, fmt.Sprintf(exampleSpaceEnvTemplate, 3000)); err != nil {
			return err
		}
		exStaging := filepath.Join(exampleDir, "_staging.env.jsonc")
		if err := writeIfAbsent(exStaging, fmt.Sprintf(exampleSpaceEnvTemplate, 8080)); err != nil {
			return err
		}
		exProd := filepath.Join(exampleDir, "_prod.env.jsonc")
		if err := writeIfAbsent(exProd, fmt.Sprintf(exampleSpaceEnvTemplate, 80)); err != nil {
			return err
		}
		fmt.Printf("✓ created %s\n", exampleDir)
	}

	fmt.Printf("\nnext: run `weaveconfig gen` from %s to produce gen/ artifacts\n", root)
	return nil
}

func writeIfAbsent(path, contents string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("✓ %s already exists, leaving as-is\n", path)
		return nil
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}
