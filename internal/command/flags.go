package command

import (
	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/types"
)

// addPageFlags registers the relay pagination flags shared by the
// connection commands.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("first", 0, "return the first N results")
	cmd.Flags().String("after", "", "resume forward after this cursor")
	cmd.Flags().Int("last", 0, "return the last N results")
	cmd.Flags().String("before", "", "resume backward before this cursor")
	cmd.Flags().String("order", "", "ordering: asserted or received (default received)")
}

// pageFromFlags builds pagination arguments, distinguishing unset
// flags from explicit zeroes.
func pageFromFlags(cmd *cobra.Command) types.Page {
	page := types.Page{}
	if cmd.Flags().Changed("first") {
		v, _ := cmd.Flags().GetInt("first")
		page.First = &v
	}
	if cmd.Flags().Changed("after") {
		v, _ := cmd.Flags().GetString("after")
		page.After = &v
	}
	if cmd.Flags().Changed("last") {
		v, _ := cmd.Flags().GetInt("last")
		page.Last = &v
	}
	if cmd.Flags().Changed("before") {
		v, _ := cmd.Flags().GetString("before")
		page.Before = &v
	}
	return page
}

func orderFromFlags(cmd *cobra.Command) types.OrderBy {
	v, _ := cmd.Flags().GetString("order")
	return types.OrderBy(v)
}

func privacyFromFlags(cmd *cobra.Command) types.Privacy {
	v, _ := cmd.Flags().GetString("privacy")
	return types.Privacy(v)
}

func stringFlagPtr(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
