package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/felixbrock/flightprice/internal/app"
	"github.com/felixbrock/flightprice/internal/config"
	"github.com/felixbrock/flightprice/internal/logging"
	"github.com/felixbrock/flightprice/internal/model"
	"github.com/felixbrock/flightprice/internal/persistence"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the prediction page and API",
	Long: `Serves the page shell on /, the prediction form on /index.html and the JSON
prediction API. Settings come from the environment; flags take precedence.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("port", "p", "", "Port to listen on (GOPORT)")
	f.String("model", "", "Model artifact path (MODEL_PATH)")
	f.String("db", "", "Prediction history database (DB_PATH)")
	f.String("static-dir", "", "Serve the form and assets from this directory (STATIC_DIR)")
	f.Bool("no-history", false, "Do not store predictions")
	f.Bool("no-watch", false, "Do not reload the model when its file changes")
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	if flags.Changed("model") {
		cfg.ModelPath, _ = flags.GetString("model")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir, _ = flags.GetString("static-dir")
	}
	if off, _ := flags.GetBool("no-history"); off {
		cfg.HistoryEnabled = false
	}
	if off, _ := flags.GetBool("no-watch"); off {
		cfg.WatchModel = false
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		return err
	}
	ctx := cmd.Context()

	store := model.NewStore(cfg.ModelPath)
	if err := store.Load(); err != nil {
		// The page still renders; prediction routes answer 503 until a
		// model shows up.
		if errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "No model yet, run train to create one", "path", cfg.ModelPath)
		} else {
			slog.ErrorContext(ctx, "Model not loaded", "path", cfg.ModelPath, "err", err)
		}
	}

	var predictions app.PredictionRepo
	if cfg.HistoryEnabled {
		repo, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				slog.Error("Error occured", "err", err)
			}
		}()
		predictions = repo
	}

	a, err := app.New(cfg, store, predictions)
	if err != nil {
		return err
	}
	store.OnReload = a.Metrics.ModelReloaded

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Start(gctx)
	})
	if cfg.WatchModel {
		g.Go(func() error {
			return store.Watch(gctx)
		})
	}
	return g.Wait()
}
