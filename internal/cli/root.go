// Package cli provides the command-line interface for mindcare.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/config"
	"github.com/swamp-dev/mindcare/internal/diary"
	"github.com/swamp-dev/mindcare/internal/journal"
	"github.com/swamp-dev/mindcare/internal/session"
	"github.com/swamp-dev/mindcare/internal/store"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "mindcare",
	Short: "Mood journal with daily analysis and statistics",
	Long: `Mindcare keeps a three-part daily journal (morning, afternoon, evening),
classifies the mood of each part and summarizes the day.

Entries are stored locally and aggregated into a dashboard of average
scores, mood distribution, score trend and weekly activity.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mindcare.yaml or the nearest parent)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initEnv loads an optional .env file and exposes the environment to viper.
func initEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}
	viper.AutomaticEnv()
}

// loadConfig resolves the config file, overlays the environment and validates.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if found, err := config.FindConfigFile(); err == nil {
			path = found
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(viper.GetViper())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if path != "" {
		logger.Debug("using config file", "path", path)
	}
	return cfg, nil
}

// app bundles the opened store with the service built on it.
type app struct {
	cfg *config.Config
	kv  store.KV
	svc *diary.Service
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	codec, err := store.NewCodec(cfg.Storage.Codec)
	if err != nil {
		return nil, err
	}

	kv, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("store opened", "backend", cfg.Storage.Backend, "codec", codec.Name())

	repo := journal.NewRepository(kv, codec, journal.WithLogger(logger))
	gw := analysis.New(cfg.AnalysisOptions(), logger)
	sess := session.NewManager(kv, codec, logger)

	return &app{
		cfg: cfg,
		kv:  kv,
		svc: diary.New(repo, gw, sess, logger),
	}, nil
}

func (a *app) Close() error {
	return a.kv.Close()
}
