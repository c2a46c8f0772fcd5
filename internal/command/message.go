package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMessageCmd creates the message command.
func NewMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message <id>",
		Short: "Show the raw envelope of one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			raw, err := ctx.Resolver().MessageRaw(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	return cmd
}

// NewMessageTypesCmd creates the message-types command.
func NewMessageTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message-types",
		Short: "List every content type tag seen in the log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			tags, err := ctx.Resolver().MessageTypes()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tags)
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		},
	}

	return cmd
}

// NewMessagesCmd creates the messages command.
func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages <type>",
		Short: "List messages of one content type in received order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			records, err := ctx.Resolver().MessagesByType(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(records)
			}

			out := cmd.OutOrStdout()
			for _, record := range records {
				fmt.Fprintf(out, "%d %s %s\n", record.Seq, record.ID, record.Author)
			}
			return nil
		},
	}

	return cmd
}
