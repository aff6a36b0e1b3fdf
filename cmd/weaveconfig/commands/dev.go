package commands

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newDevCommand implements `weaveconfig dev`, a watch command: recursive
// directory watch, debounced reload, clean shutdown on ctx cancellation.
func newDevCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Watch the workspace root and re-run gen on change",
		Long: `Watch every directory under the workspace root and re-run the
gen pipeline whenever a _space.jsonc, _env.jsonc, _<env>.env.jsonc, or
copy-eligible file changes. Intended for local iteration, not CI.`,
		Example: `  # Watch and regenerate on change
  weaveconfig dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd.Context())
		},
	}
	return cmd
}

func runDev(ctx context.Context) error {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return &usageError{err: fmt.Errorf("resolve root %q: %w", rootPath, err)}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchDirectory(watcher, abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n\n", abs)
	rerun(ctx)

	var reloadTimer *time.Timer
	const debounce = 300 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("workspace file changed")

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(debounce, func() { rerun(ctx) })

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(watchErr).Msg("watcher error")
		}
	}
}

// watchDirectory recursively adds every directory under root to the
// watcher; fsnotify does not watch subtrees on its own.
func watchDirectory(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func rerun(ctx context.Context) {
	result, err := runPipeline(ctx, true)
	if err != nil {
		fmt.Println("✗ resolution failed, see errors above")
		return
	}
	fmt.Printf("✓ resolved %d space(s)\n", result.SpacesDiscovered)
}
