// ABOUTME: CLI commands for exporting and importing lifetracker data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON import.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/harperreed/lifetracker/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportType   string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export lifetracker data",
	Long: `Export entries and photo metadata in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by stat type (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --type, -t     Filter by stat type (markdown only)
  --since        Only include data since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  lifetracker export json                        # Export all data as JSON
  lifetracker export json -o backup.json         # Save to file
  lifetracker export yaml                        # Export as YAML
  lifetracker export markdown --type weight      # Export weight as Markdown
  lifetracker export markdown --since 2024-01-01 # Export data from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		exportData := storage.NewExportData(app.history.AllEntries(), app.photos.AllPhotos(), time.Now())

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(exportData)
		case "yaml":
			data, err = storage.ExportYAML(exportData)
		case "markdown":
			var statType *models.StatType
			if exportType != "" {
				if !models.IsValidStatType(exportType) {
					return fmt.Errorf("unknown stat type: %s", exportType)
				}
				st := models.StatType(exportType)
				statType = &st
			}
			var since *time.Time
			if exportSince != "" {
				t, err := time.ParseInLocation("2006-01-02", exportSince, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			data = []byte(storage.ExportMarkdown(exportData, statType, since))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import lifetracker data from JSON",
	Long: `Import entries and photo metadata from a JSON backup file.

Records whose ID is already present are skipped, so importing the same
backup twice does not duplicate anything. Photo images are not part of the
export; imported photos keep their original image references.

EXAMPLES:

  lifetracker import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		exportData, err := storage.ParseExportJSON(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		var fresh []models.StatEntry
		for _, e := range exportData.Entries {
			if _, ok := app.history.Entry(e.ID); !ok {
				fresh = append(fresh, e)
			}
		}
		app.history.AddEntries(fresh...)

		addedPhotos := 0
		for _, p := range exportData.Photos {
			if _, ok := app.photos.Photo(p.ID); ok {
				continue
			}
			if err := app.photos.AddPhoto(p); err != nil {
				color.Yellow("⚠ Skipped photo %s: %v", p.ID.String()[:8], err)
				continue
			}
			addedPhotos++
		}

		color.Green("✓ Imported %d entries and %d photos from %s", len(fresh), addedPhotos, filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "filter by stat type (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
