// ABOUTME: CLI commands for importing body stats from a health data export.
// ABOUTME: Covers authorization, import, refresh, disconnect, and a status panel.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/lifetracker/internal/config"
	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/models"
	"github.com/harperreed/lifetracker/internal/provider"
	"github.com/spf13/cobra"
)

// healthIn is where authorization answers are read from.
var healthIn io.Reader = os.Stdin

var healthYes bool

// statusPreview is how many imported entries the status panel shows per metric.
const statusPreview = 5

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Import body stats from health data",
	Long: `Import weight, height, and body fat from a health data export.

The export path is health_export in the config file (default
~/.local/share/lifetracker/health-export.json). JSON and YAML exports are
supported. Imported entries are tagged with the apple_health source.

EXAMPLES:

  lifetracker health status       # Import state and imported entries
  lifetracker health authorize    # Grant access without importing
  lifetracker health connect      # Authorize if needed, then import
  lifetracker health sync         # Clear imported entries and import again
  lifetracker health disconnect   # Remove imported entries and revoke access`,
}

var healthStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show health import state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		imp := app.importer
		faint := color.New(color.Faint)

		fmt.Printf("%s %s\n", padRight("Export:", 12), app.provider.Path())
		fmt.Printf("%s %v\n", padRight("Available:", 12), imp.IsAvailable())
		fmt.Printf("%s %v\n", padRight("Authorized:", 12), imp.IsAuthorized())
		status := imp.Status()
		if status == "" {
			status = faint.Sprint("not synced")
		}
		fmt.Printf("%s %s\n", padRight("Status:", 12), status)
		if last := imp.LastUpdate(); !last.IsZero() {
			fmt.Printf("%s %s\n", padRight("Last sync:", 12), models.FormatRowDate(last))
		} else {
			fmt.Printf("%s %s\n", padRight("Last sync:", 12), faint.Sprint("never"))
		}

		src := imp.Source()
		for _, m := range imp.Metrics() {
			entries := history.SortedByDate(app.history.Entries(m.Kind, &src), true)
			fmt.Println()
			color.New(color.Bold).Printf("%s (%d)\n", models.StatNames[m.Kind], len(entries))
			if len(entries) > statusPreview {
				entries = entries[:statusPreview]
			}
			for _, e := range entries {
				fmt.Printf("  %s %s %s\n",
					faint.Sprint(e.ID.String()[:8]),
					faint.Sprint(padRight(models.FormatRowDate(e.Date), 16)),
					formatEntryValue(e))
			}
		}
		return nil
	},
}

var healthAuthorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Grant access to health data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.importer.RequestAuthorization(cmd.Context()); err != nil {
			return err
		}
		if err := rememberAuthorization(true); err != nil {
			return err
		}
		color.Green("✓ Authorized")
		return nil
	},
}

var healthConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Authorize if needed and import health data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.importer.AuthorizeAndImport(cmd.Context())
		if err != nil {
			return err
		}
		if err := rememberAuthorization(true); err != nil {
			return err
		}
		printImportResult(res)
		return nil
	},
}

var healthSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace imported entries with a fresh import",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !app.importer.IsAuthorized() {
			if err := app.importer.RequestAuthorization(ctx); err != nil {
				return err
			}
			if err := rememberAuthorization(true); err != nil {
				return err
			}
		}

		res, cleared, err := app.importer.Refresh(ctx, app.history)
		if err != nil {
			return err
		}
		if cleared > 0 {
			color.Yellow("✗ Cleared %d imported entries", cleared)
		}
		printImportResult(res)
		return nil
	},
}

var healthDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove imported entries and forget authorization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cleared := app.importer.Disconnect(app.history)
		err := saveConfig(app.cfg, func(c *config.Config) {
			c.HealthAuthorized = false
			c.HealthLastSync = nil
			c.HealthLastStatus = ""
		})
		if err != nil {
			return err
		}
		color.Yellow("✗ Disconnected, removed %d imported entries", cleared)
		return nil
	},
}

// promptAuthorization asks on the terminal whether the requested types may
// be read and written. Anything but y or yes is a denial.
func promptAuthorization(read, write []models.StatType) (bool, error) {
	if healthYes {
		return true, nil
	}

	fmt.Fprintf(os.Stderr, "Allow lifetracker to read %s and write %s? [y/N] ",
		statTypeList(read), statTypeList(write))

	line, err := bufio.NewReader(healthIn).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// refuseAuthorization answers for sessions that cannot prompt.
func refuseAuthorization(read, write []models.StatType) (bool, error) {
	_, err := provider.NonInteractive(read, write)
	return false, fmt.Errorf("%w: run 'lifetracker health authorize' first", err)
}

func rememberAuthorization(authorized bool) error {
	if app.cfg.HealthAuthorized == authorized {
		return nil
	}
	return saveConfig(app.cfg, func(c *config.Config) {
		c.HealthAuthorized = authorized
	})
}

func printImportResult(res healthimport.Result) {
	switch res.State {
	case healthimport.StateCompleted:
		color.Green("✓ %s", res.Status)
	case healthimport.StatePartiallyCompleted:
		color.Yellow("⚠ %s", res.Status)
	default:
		color.Red("✗ %s", res.Status)
	}

	for _, t := range res.Tasks {
		name := padRight(models.StatNames[t.Kind], 10)
		if t.OK() {
			fmt.Printf("  %s %d added\n", name, t.Added)
			continue
		}
		fmt.Printf("  %s %s\n", name, color.RedString(t.Err.Error()))
	}
}

func statTypeList(types []models.StatType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, models.StatNames[t])
	}
	return strings.Join(names, ", ")
}

func init() {
	healthCmd.PersistentFlags().BoolVarP(&healthYes, "yes", "y", false, "grant authorization without asking")

	healthCmd.AddCommand(healthStatusCmd)
	healthCmd.AddCommand(healthAuthorizeCmd)
	healthCmd.AddCommand(healthConnectCmd)
	healthCmd.AddCommand(healthSyncCmd)
	healthCmd.AddCommand(healthDisconnectCmd)
	rootCmd.AddCommand(healthCmd)
}
