package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewProcessCmd creates the process command.
func NewProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Index the next chunk of the log",
		Long: `Read a bounded chunk of log entries past the index cursor, apply
them, and advance the cursor. Run repeatedly (or with --all) to catch
the index up to the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			chunk, _ := cmd.Flags().GetInt("chunk")
			all, _ := cmd.Flags().GetBool("all")

			run := ctx.Engine.Process
			if all {
				run = ctx.Engine.CatchUp
			}
			result, err := run(cmd.Context(), chunk)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			out := cmd.OutOrStdout()
			if result.ChunkSize == 0 {
				fmt.Fprintln(out, "Index is up to date")
				return nil
			}
			cursor := int64(-1)
			if result.LatestSequence != nil {
				cursor = *result.LatestSequence
			}
			fmt.Fprintf(out, "Processed %d entries, cursor at %d\n", result.ChunkSize, cursor)
			return nil
		},
	}

	cmd.Flags().Int("chunk", 0, "entries per chunk (0 = default)")
	cmd.Flags().Bool("all", false, "process chunks until caught up")

	return cmd
}

// NewRebuildCmd creates the rebuild command.
func NewRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Drop the index and reindex the whole log",
		Long: `Drop every derived table and reindex from log offset zero. The
recovery path when the index reports corruption, and the upgrade path
when the schema version changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetResetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			// GetResetContext already dropped the derived tables.
			chunk, _ := cmd.Flags().GetInt("chunk")
			result, err := ctx.Engine.CatchUp(cmd.Context(), chunk)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reindexed %d entries\n", result.ChunkSize)
			return nil
		},
	}

	cmd.Flags().Int("chunk", 0, "entries per chunk (0 = default)")

	return cmd
}
