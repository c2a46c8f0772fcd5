package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewAuthorsCmd creates the authors command.
func NewAuthorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors <query>",
		Short: "Search authors by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			includeDescriptions, _ := cmd.Flags().GetBool("descriptions")
			excludeBlockedBy, _ := cmd.Flags().GetStringSlice("exclude-blocked-by")

			authors, err := ctx.Resolver().AuthorsSearch(args[0], includeDescriptions, excludeBlockedBy)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(authors)
			}

			out := cmd.OutOrStdout()
			if len(authors) == 0 {
				fmt.Fprintln(out, "No authors found")
				return nil
			}
			for _, author := range authors {
				formatAuthor(out, author)
			}
			return nil
		},
	}

	cmd.Flags().Bool("descriptions", false, "also match against descriptions")
	cmd.Flags().StringSlice("exclude-blocked-by", nil, "drop authors any of these identities block")

	return cmd
}

// NewAuthorCmd creates the author command.
func NewAuthorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author <id>",
		Short: "Show one author's profile and public graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			resolver := ctx.Resolver()
			author, err := resolver.Author(args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			follows, err := resolver.Follows(author.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			followedBy, err := resolver.FollowedBy(author.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			blocks, err := resolver.Blocks(author.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			blockedBy, err := resolver.BlockedBy(author.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"author":      author,
					"follows":     follows,
					"followed_by": followedBy,
					"blocks":      blocks,
					"blocked_by":  blockedBy,
				})
			}

			out := cmd.OutOrStdout()
			formatAuthor(out, author)
			if author.ImageLink != nil {
				fmt.Fprintf(out, "  image: %s\n", *author.ImageLink)
			}
			fmt.Fprintf(out, "Follows: %d, followed by: %d, blocks: %d, blocked by: %d\n",
				len(follows), len(followedBy), len(blocks), len(blockedBy))
			return nil
		},
	}

	return cmd
}
