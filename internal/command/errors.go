package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/types"
)

func writeCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())

	if errors.Is(err, types.ErrIndexCorrupt) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: The index is out of sync with the log. Try: weft rebuild")
	}
	if errors.Is(err, types.ErrBusy) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Hint: Another process is indexing this database. Retry shortly.")
	}

	return err
}
