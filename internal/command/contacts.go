package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewContactsCmd creates the contacts command group.
func NewContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect the contact graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newContactsStatusCmd(),
		newContactsListCmd("follows", "Authors this author publicly follows"),
		newContactsListCmd("followers", "Authors publicly following this author"),
		newContactsListCmd("blocks", "Authors this author publicly blocks"),
		newContactsListCmd("blockers", "Authors publicly blocking this author"),
	)

	return cmd
}

func newContactsStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <from> <to>",
		Short: "Show the contact edge from one author to another",
		Long: `Show the (from, to) contact edge. The privately asserted state is
only included when --as names the from author; everyone else sees the
public state alone.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			viewer := stringFlagPtr(cmd, "as")
			status, err := ctx.Resolver().ContactStatus(viewer, args[0], args[1])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Public: %s\n", status.Public)
			if status.Private != nil {
				fmt.Fprintf(out, "Private: %s\n", *status.Private)
			}
			return nil
		},
	}

	cmd.Flags().String("as", "", "resolve as this identity")

	return cmd
}

func newContactsListCmd(direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			resolver := ctx.Resolver()
			var ids []string
			switch direction {
			case "follows":
				ids, err = resolver.Follows(args[0])
			case "followers":
				ids, err = resolver.FollowedBy(args[0])
			case "blocks":
				ids, err = resolver.Blocks(args[0])
			case "blockers":
				ids, err = resolver.BlockedBy(args[0])
			}
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(ids)
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "(none)")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}
