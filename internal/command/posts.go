package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/types"
)

// NewPostsCmd creates the posts command.
func NewPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts with filters and pagination",
		Long: `List indexed posts. All supplied filters apply together. The query
matches post text as a substring, or as a glob pattern when it
contains pattern metacharacters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			queryText, _ := cmd.Flags().GetString("query")
			authors, _ := cmd.Flags().GetStringSlice("author")
			mentionsAuthors, _ := cmd.Flags().GetStringSlice("mentions-author")
			mentionsChannels, _ := cmd.Flags().GetStringSlice("mentions-channel")

			filter := types.PostFilter{
				Query:            queryText,
				Authors:          authors,
				Privacy:          privacyFromFlags(cmd),
				MentionsAuthors:  mentionsAuthors,
				MentionsChannels: mentionsChannels,
			}

			connection, err := ctx.Resolver().Posts(filter, orderFromFlags(cmd), pageFromFlags(cmd))
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(connection)
			}

			out := cmd.OutOrStdout()
			for _, edge := range connection.Edges {
				formatPost(out, edge.Node)
			}
			formatPageInfo(out, connection.PageInfo, connection.TotalCount)
			return nil
		},
	}

	cmd.Flags().String("query", "", "match post text")
	cmd.Flags().StringSlice("author", nil, "only posts by these authors")
	cmd.Flags().String("privacy", "", "all, public, or private")
	cmd.Flags().StringSlice("mentions-author", nil, "only posts mentioning these authors")
	cmd.Flags().StringSlice("mentions-channel", nil, "only posts mentioning these channels")
	addPageFlags(cmd)

	return cmd
}

// NewPostCmd creates the post command.
func NewPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post <id>",
		Short: "Show one post with its likes, forks, and references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			resolver := ctx.Resolver()
			post, err := resolver.Post(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			likes, err := resolver.Likes(post.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			forks, err := resolver.Forks(post.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			references, err := resolver.References(post.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"post":       post,
					"likes":      likes,
					"forks":      forks,
					"references": references,
				})
			}

			out := cmd.OutOrStdout()
			formatPost(out, post)
			if len(likes) > 0 {
				fmt.Fprintf(out, "Likes: %d\n", len(likes))
				for _, like := range likes {
					fmt.Fprintf(out, "  %s (%d)\n", like.Author, like.Value)
				}
			}
			if len(forks) > 0 {
				fmt.Fprintln(out, "Forks:")
				for _, fork := range forks {
					fmt.Fprintf(out, "  %s %s\n", fork.ID, fork.Author)
				}
			}
			if len(references) > 0 {
				fmt.Fprintln(out, "Referenced by:")
				for _, ref := range references {
					fmt.Fprintf(out, "  %s %s\n", ref.ID, ref.Author)
				}
			}
			return nil
		},
	}

	return cmd
}
