// ABOUTME: CLI commands for deleting entries and clearing a source.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a body stat entry",
	Long: `Delete a body stat entry by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'lifetracker list' output.

EXAMPLES:

  lifetracker delete abc12345                # Delete by 8-char prefix
  lifetracker delete abc12345-1234-1234-...  # Delete by full UUID
  lifetracker rm abc1                        # Short prefix (if unique)

CAUTION:

  This permanently deletes the entry. There is no undo.
  If the prefix matches multiple entries, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.history.Find(args[0])
		if err != nil {
			return err
		}
		app.history.DeleteEntry(e.ID)

		color.Yellow("✗ Deleted %s", models.StatNames[e.Type])
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			formatEntryValue(e))

		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <source>",
	Short: "Delete every entry from one source",
	Long: `Delete every entry tagged with a source. Entries from other sources
are kept.

EXAMPLES:

  lifetracker clear apple_health   # Drop everything imported from health data
  lifetracker clear manual         # Drop everything entered by hand`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.SourceManual), string(models.SourceAppleHealth)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsValidSource(args[0]) {
			return fmt.Errorf("unknown source: %s", args[0])
		}

		n := app.history.ClearEntries(models.Source(args[0]))
		if n == 0 {
			fmt.Printf("No %s entries to clear.\n", args[0])
			return nil
		}
		color.Yellow("✗ Cleared %d %s entries", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
}
