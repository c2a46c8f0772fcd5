package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "weft"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Weft - social graph queries over an append-only log",
		Long:          "Weft indexes an append-only message log into a local database\nand answers feed, thread, and social graph queries against it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("log", "weft.log", "offset log file")
	cmd.PersistentFlags().String("db", "", "index database file (default: log path with .db extension)")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("verbose", false, "log indexing progress to stderr")

	cmd.AddCommand(
		NewProcessCmd(),
		NewRebuildCmd(),
		NewStatusCmd(),
		NewWatchCmd(),
		NewPostsCmd(),
		NewPostCmd(),
		NewThreadsCmd(),
		NewThreadCmd(),
		NewAuthorsCmd(),
		NewAuthorCmd(),
		NewContactsCmd(),
		NewMessageCmd(),
		NewMessageTypesCmd(),
		NewMessagesCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
