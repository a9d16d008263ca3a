// ABOUTME: CLI command for listing body stat entries.
// ABOUTME: Supports filtering by type and source, date sorting, and limits.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/spf13/cobra"
)

var (
	listType   string
	listSource string
	listSorted bool
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List body stat entries",
	Long: `List body stat entries in the order they were recorded.

OUTPUT FORMAT:

  Each line shows: ID  DATE  TYPE  VALUE  SOURCE

  The ID is an 8-character prefix you can use with edit and delete.

FILTERING:

  Use --type to filter by stat type:
    weight, height, body_fat, bmi, waist, chest, hips, biceps, thigh

  Use --source to filter by source: manual or apple_health.

EXAMPLES:

  lifetracker list                          # Every entry, in recorded order
  lifetracker list --type weight --sorted   # Weights, newest first
  lifetracker list --source apple_health    # Only imported entries
  lifetracker list -t waist -n 5            # Last 5 waist entries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var src *models.Source
		if listSource != "" {
			if !models.IsValidSource(listSource) {
				return fmt.Errorf("unknown source: %s", listSource)
			}
			s := models.Source(listSource)
			src = &s
		}

		var entries []models.StatEntry
		if listType != "" {
			if !models.IsValidStatType(listType) {
				return fmt.Errorf("unknown stat type: %s", listType)
			}
			entries = app.history.Entries(models.StatType(listType), src)
		} else {
			for _, e := range app.history.AllEntries() {
				if src == nil || e.Source == *src {
					entries = append(entries, e)
				}
			}
		}

		if listSorted {
			entries = history.SortedByDate(entries, true)
			if listLimit > 0 && len(entries) > listLimit {
				entries = entries[:listLimit]
			}
		} else if listLimit > 0 && len(entries) > listLimit {
			entries = entries[len(entries)-listLimit:]
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			fmt.Printf("%s %s %s %s %s\n",
				faint.Sprint(e.ID.String()[:8]),
				faint.Sprint(padRight(models.FormatRowDate(e.Date), 16)),
				padRight(models.StatNames[e.Type], 8),
				padRight(formatEntryValue(e), 10),
				faint.Sprint(e.Source))
		}

		return nil
	},
}

// formatEntryValue renders a value with its unit, e.g. "82,5 kg".
func formatEntryValue(e models.StatEntry) string {
	v := models.FormatValue(e.Value)
	if unit := e.Unit(); unit != "" {
		return v + " " + unit
	}
	return v
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by stat type")
	listCmd.Flags().StringVarP(&listSource, "source", "s", "", "filter by source")
	listCmd.Flags().BoolVar(&listSorted, "sorted", false, "sort by date, newest first")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "max number of results (0 for all)")
	rootCmd.AddCommand(listCmd)
}
