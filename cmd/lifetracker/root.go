// ABOUTME: Root Cobra command for lifetracker CLI.
// ABOUTME: Opens storage, restores the stores, and wires persistence via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/lifetracker/internal/config"
	"github.com/harperreed/lifetracker/internal/healthimport"
	"github.com/harperreed/lifetracker/internal/history"
	"github.com/harperreed/lifetracker/internal/logging"
	"github.com/harperreed/lifetracker/internal/photos"
	"github.com/harperreed/lifetracker/internal/provider"
	"github.com/harperreed/lifetracker/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var verbose bool

// annotationStdinProtocol marks commands whose stdin carries a protocol
// stream, so nothing may prompt on it.
const annotationStdinProtocol = "stdin-protocol"

// app holds everything a command needs. It is nil outside a command run.
var app *appState

// cfgMu guards config writes, which MCP tool calls may make concurrently.
var cfgMu sync.Mutex

type appState struct {
	cfg       *config.Config
	log       *logrus.Logger
	repo      storage.Repository
	persister *storage.Persister
	history   *history.Store
	photos    *photos.Index
	provider  *provider.FileProvider
	importer  *healthimport.Coordinator
}

var rootCmd = &cobra.Command{
	Use:   "lifetracker",
	Short: "Body stats and progress photo tracker",
	Long: `Lifetracker tracks body stats and progress photos, and imports
measurements from a health data export.

WHAT IT TRACKS:

  Body stats   weight, height, body_fat, bmi, waist, chest, hips, biceps, thigh
  Photos       front, back, side, arms, chest, abs, legs, shoulders

QUICK START:

  $ lifetracker add weight 82.5                 # Log your weight
  $ lifetracker add waist 88 --at "2024-12-14"  # Log a past measurement
  $ lifetracker list                            # See all entries
  $ lifetracker list --type weight --sorted     # Newest weights first
  $ lifetracker photo add front.jpg -c front    # Store a progress photo

HEALTH IMPORT:

  Point health_export in the config at a JSON or YAML export of your
  weight, height, and body fat samples, then:

  $ lifetracker health connect      # Authorize and import
  $ lifetracker health sync         # Replace imported entries with a fresh import
  $ lifetracker health status       # Show import state and imported entries

MCP INTEGRATION:

  Run 'lifetracker mcp' to start the Model Context Protocol server for use
  with Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  Configured in ~/.config/lifetracker/config.json. The default sqlite backend
  keeps data in ~/.local/share/lifetracker/lifetracker.db.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return openApp(cmd.Annotations[annotationStdinProtocol] != "true")
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// Execute runs the root command and always releases storage, including
// when a command fails and cobra skips the post-run hook.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	return multierr.Append(err, closeApp())
}

// openApp loads config and storage for one command run. Health authorization
// prompts on the terminal only when interactive is true.
func openApp(interactive bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.GetLogLevel()
	if verbose {
		level = "debug"
	}
	log := logging.Setup(logging.SetupParams{
		LogLevel:      level,
		LogFormatJSON: cfg.LogJSON,
		LogFileName:   cfg.LogFile,
	})

	repo, err := cfg.OpenStorage(log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	store := history.New()
	index := photos.New()
	if err := storage.Restore(repo, store, index); err != nil {
		_ = repo.Close()
		return fmt.Errorf("failed to load data: %w", err)
	}

	persister := storage.NewPersister(repo, log)
	persister.WatchHistory(store)
	persister.WatchPhotos(index)

	prompt := provider.PromptFunc(promptAuthorization)
	if !interactive {
		prompt = refuseAuthorization
	}
	p := provider.NewFileProvider(cfg.GetHealthExport(),
		provider.WithAuthorized(cfg.HealthAuthorized),
		provider.WithPrompt(prompt),
	)

	importOpts := []healthimport.Option{
		healthimport.WithLogger(log),
		healthimport.WithOnFinish(func(res healthimport.Result) {
			recordSync(cfg, log, res)
		}),
	}
	if cfg.HealthLastSync != nil {
		importOpts = append(importOpts, healthimport.WithLastSync(*cfg.HealthLastSync, cfg.HealthLastStatus))
	}

	app = &appState{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		persister: persister,
		history:   store,
		photos:    index,
		provider:  p,
		importer:  healthimport.NewCoordinator(p, store, importOpts...),
	}

	log.WithFields(logrus.Fields{
		"backend": cfg.GetBackend(),
		"entries": store.Count(),
		"photos":  index.Count(),
	}).Debug("storage opened")
	return nil
}

// closeApp stops persistence and closes storage. Persist failures seen
// during the run are returned so they are not lost silently.
func closeApp() error {
	if app == nil {
		return nil
	}
	a := app
	app = nil

	a.persister.Stop()
	var err error
	if perr := a.persister.Err(); perr != nil {
		err = fmt.Errorf("some changes were not saved: %w", perr)
	}
	return multierr.Append(err, a.repo.Close())
}

// saveConfig applies update to cfg and writes it out.
func saveConfig(cfg *config.Config, update func(*config.Config)) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	update(cfg)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// recordSync remembers a finished import so later runs can show it.
func recordSync(cfg *config.Config, log logrus.FieldLogger, res healthimport.Result) {
	err := saveConfig(cfg, func(c *config.Config) {
		at := res.FinishedAt
		c.HealthLastSync = &at
		c.HealthLastStatus = res.Status
	})
	if err != nil {
		log.WithError(err).Warn("last sync not recorded")
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
