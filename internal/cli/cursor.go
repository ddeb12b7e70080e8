package cli

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/gitdump/internal/cursor"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Inspect or reset the last dumped commit",
	Long: `Every combination of layout (--all or tag directories) and tag glob keeps
its own cursor in <out>/.gitdump/. Resetting a cursor makes the next run start
from the beginning of history again; patches already on disk are skipped.`,
}

var cursorShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List saved cursors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return sessionError(cmd, err)
		}
		entries, err := cursor.List(appFs, s.outDir)
		if err != nil {
			return fail(cmd, err)
		}
		if len(entries) == 0 {
			cmd.Printf("No cursors saved in %s\n", s.outDir)
			return nil
		}

		sha := color.New(color.FgYellow).SprintFunc()
		when := color.New(color.FgHiBlack).SprintFunc()
		for _, e := range entries {
			cmd.Printf("%-24s %s %s\n", selectorLabel(e.Selector), sha(e.Commit), when(e.UpdatedAt.Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

var cursorResetCmd = &cobra.Command{
	Use:   "reset [tag-glob]",
	Short: "Forget the cursor of a layout and tag glob",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		glob, err := globArg(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd)
		if err != nil {
			return sessionError(cmd, err)
		}

		store := cursor.New(appFs, s.outDir, cursor.Selector(flagAll, glob))
		removed, err := store.Reset()
		if err != nil {
			return fail(cmd, err)
		}
		if !removed {
			cmd.Printf("No cursor saved for %s\n", selectorLabel(store.Selector()))
			return nil
		}
		cmd.Printf("Reset cursor for %s\n", selectorLabel(store.Selector()))
		return nil
	},
}

// selectorLabel spells out the empty glob of a selector.
func selectorLabel(selector string) string {
	if strings.HasSuffix(selector, ":") {
		return selector + " (no filter)"
	}
	return selector
}

func init() {
	cursorCmd.AddCommand(cursorShowCmd)
	cursorCmd.AddCommand(cursorResetCmd)
}
