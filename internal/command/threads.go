package command

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/types"
)

// NewThreadsCmd creates the threads command.
func NewThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List threads matching any selector",
		Long: `List threads by their root post. A thread matches when any one
supplied selector holds; with no selectors every thread matches.
Privacy filtering applies on top of the selectors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			rootsBy, _ := cmd.Flags().GetStringSlice("roots-by")
			rootsByFollowed, _ := cmd.Flags().GetStringSlice("roots-by-followed-of")
			repliesBy, _ := cmd.Flags().GetStringSlice("replies-by")
			repliesByFollowed, _ := cmd.Flags().GetStringSlice("replies-by-followed-of")
			mentionsAuthors, _ := cmd.Flags().GetStringSlice("mentions-author")
			mentionsChannels, _ := cmd.Flags().GetStringSlice("mentions-channel")

			selector := types.ThreadSelector{
				Privacy:                               privacyFromFlags(cmd),
				RootsAuthoredBy:                       rootsBy,
				RootsAuthoredBySomeoneFollowedBy:      rootsByFollowed,
				HasRepliesAuthoredBy:                  repliesBy,
				HasRepliesAuthoredBySomeoneFollowedBy: repliesByFollowed,
				MentionsAuthors:                       mentionsAuthors,
				MentionsChannels:                      mentionsChannels,
			}

			connection, err := ctx.Resolver().Threads(selector, orderFromFlags(cmd), pageFromFlags(cmd))
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(connection)
			}

			out := cmd.OutOrStdout()
			for _, edge := range connection.Edges {
				formatThread(out, edge.Node)
			}
			formatPageInfo(out, connection.PageInfo, connection.TotalCount)
			return nil
		},
	}

	cmd.Flags().String("privacy", "", "all, public, or private")
	cmd.Flags().StringSlice("roots-by", nil, "threads rooted by these authors")
	cmd.Flags().StringSlice("roots-by-followed-of", nil, "threads rooted by someone these authors follow")
	cmd.Flags().StringSlice("replies-by", nil, "threads with replies by these authors")
	cmd.Flags().StringSlice("replies-by-followed-of", nil, "threads with replies by someone these authors follow")
	cmd.Flags().StringSlice("mentions-author", nil, "threads mentioning these authors")
	cmd.Flags().StringSlice("mentions-channel", nil, "threads mentioning these channels")
	addPageFlags(cmd)

	return cmd
}

// NewThreadCmd creates the thread command.
func NewThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thread <post-id>",
		Short: "Show one thread by any post in it",
		Long: `Show a thread given any post in it. Replies order by received
sequence, asserted timestamp, or causal ancestry via --order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			order, _ := cmd.Flags().GetString("order")
			thread, err := ctx.Resolver().Thread(args[0], types.OrderBy(order))
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(thread)
			}
			formatThread(cmd.OutOrStdout(), thread)
			return nil
		},
	}

	cmd.Flags().String("order", "", "ordering: asserted, received, or causal (default received)")

	return cmd
}
