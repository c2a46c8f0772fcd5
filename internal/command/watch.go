package command

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/types"
)

// debounceDelay coalesces bursts of log appends into one indexing run.
const debounceDelay = 200 * time.Millisecond

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index caught up as the log grows",
		Long: `Catch the index up, then watch the log file and reindex whenever it
grows. Runs in the foreground until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			chunk, _ := cmd.Flags().GetInt("chunk")

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			catchUp := func() error {
				result, err := ctx.Engine.CatchUp(sigCtx, chunk)
				if err != nil {
					if errors.Is(err, types.ErrBusy) {
						return nil
					}
					return err
				}
				if result.ChunkSize > 0 && !ctx.JSONMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d entries\n", result.ChunkSize)
				}
				return nil
			}

			if err := catchUp(); err != nil {
				return writeCommandError(cmd, err)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer watcher.Close()

			// Watch the directory: the log file may not exist yet, and
			// appenders that rename into place never touch the old inode.
			logPath := ctx.Log.Path()
			if err := watcher.Add(filepath.Dir(logPath)); err != nil {
				return writeCommandError(cmd, err)
			}

			debounce := time.NewTimer(debounceDelay)
			if !debounce.Stop() {
				<-debounce.C
			}

			for {
				select {
				case <-sigCtx.Done():
					return nil
				case event := <-watcher.Events:
					if event.Name != logPath {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					debounce.Reset(debounceDelay)
				case <-debounce.C:
					if err := catchUp(); err != nil {
						return writeCommandError(cmd, err)
					}
				case err := <-watcher.Errors:
					return writeCommandError(cmd, err)
				}
			}
		},
	}

	cmd.Flags().Int("chunk", 0, "entries per chunk (0 = default)")

	return cmd
}
