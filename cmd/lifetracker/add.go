// ABOUTME: CLI commands for adding and editing body stat entries.
// ABOUTME: Validates the stat type, value, timestamp, and source tag.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/spf13/cobra"
)

var (
	addAt     string
	addSource string
	editAt    string
)

var addCmd = &cobra.Command{
	Use:     "add <type> <value>",
	Aliases: []string{"a"},
	Short:   "Add a body stat entry",
	Long: `Add a body stat entry. Values are in the stat's unit: kg for weight,
cm for height and circumferences, percent for body fat.

Examples:
  lifetracker add weight 82.5
  lifetracker add body_fat 21,5
  lifetracker add waist 88 --at "2024-12-14 07:00"
  lifetracker add weight 81 --source apple_health`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		statType := args[0]
		if !models.IsValidStatType(statType) {
			return fmt.Errorf("unknown stat type: %s\nValid types: %s", statType, validStatTypes())
		}

		value, err := parseValue(args[1])
		if err != nil {
			return err
		}

		e := models.NewStatEntry(models.StatType(statType), value)

		if addAt != "" {
			t, err := models.ParseTime(addAt, time.Local)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
			e = e.WithDate(t)
		}

		if addSource != "" {
			if !models.IsValidSource(addSource) {
				return fmt.Errorf("unknown source: %s", addSource)
			}
			e = e.WithSource(models.Source(addSource))
		}

		app.history.AddEntry(e)

		color.Green("✓ Added %s", models.StatNames[e.Type])
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			formatEntryValue(e))

		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <value>",
	Short: "Change the value of an entry",
	Long: `Replace an entry's value, keeping its position in the history.

The ID can be a unique prefix, as shown by 'lifetracker list'.

Examples:
  lifetracker edit abc12345 81.9
  lifetracker edit abc1 81.9 --at "2024-12-14 07:30"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := app.history.Find(args[0])
		if err != nil {
			return err
		}

		value, err := parseValue(args[1])
		if err != nil {
			return err
		}
		e = e.WithValue(value)

		if editAt != "" {
			t, err := models.ParseTime(editAt, time.Local)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", editAt)
			}
			e = e.WithDate(t)
		}

		if !app.history.ReplaceEntry(e) {
			return fmt.Errorf("entry %s: %w", args[0], models.ErrNotFound)
		}

		color.Green("✓ Updated %s", models.StatNames[e.Type])
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(e.ID.String()[:8]),
			formatEntryValue(e))

		return nil
	},
}

// parseValue accepts a dot or comma decimal separator.
func parseValue(s string) (float64, error) {
	value, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value: %s", s)
	}
	return value, nil
}

func validStatTypes() string {
	names := make([]string, 0, len(models.AllStatTypes))
	for _, t := range models.AllStatTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringVar(&addSource, "source", "", "source tag (manual or apple_health)")
	editCmd.Flags().StringVar(&editAt, "at", "", "new timestamp (YYYY-MM-DD HH:MM)")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
}
