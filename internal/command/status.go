package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index cursor and log position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			cursor, err := ctx.Resolver().DBCursor()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			logSeq, err := ctx.Log.Sequence()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			messageTypes, err := ctx.Resolver().MessageTypes()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			indexed := int64(-1)
			if cursor != nil {
				indexed = *cursor
			}
			pending := logSeq - indexed

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"cursor":        cursor,
					"log_sequence":  logSeq,
					"pending":       pending,
					"message_types": messageTypes,
				})
			}

			out := cmd.OutOrStdout()
			if cursor == nil {
				fmt.Fprintln(out, "Cursor: none (nothing indexed)")
			} else {
				fmt.Fprintf(out, "Cursor: %d\n", *cursor)
			}
			fmt.Fprintf(out, "Log sequence: %d\n", logSeq)
			fmt.Fprintf(out, "Pending entries: %d\n", pending)
			if len(messageTypes) > 0 {
				fmt.Fprintf(out, "Message types: %s\n", strings.Join(messageTypes, ", "))
			}
			return nil
		},
	}

	return cmd
}
