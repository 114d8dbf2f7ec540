package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/mindcare/internal/config"
)

var (
	initBackend  string
	initCodec    string
	initProvider string
	initRedisURL string
	initMongoURI string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a mindcare.yaml in the current directory",
	Long: `Init writes a mindcare.yaml with default settings.

The analysis API key is never written to the file. Set GEMINI_API_KEY in
the environment or in a .env file instead.

Examples:
  mindcare init
  mindcare init --backend memory --provider demo
  mindcare init --codec msgpack --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initBackend, "backend", "sqlite", "storage backend (sqlite, memory, redis, mongo)")
	initCmd.Flags().StringVar(&initCodec, "codec", "json", "storage encoding (json, msgpack)")
	initCmd.Flags().StringVar(&initProvider, "provider", "auto", "analysis provider (auto, demo, remote)")
	initCmd.Flags().StringVar(&initRedisURL, "redis-url", "", "redis URL for the redis backend")
	initCmd.Flags().StringVar(&initMongoURI, "mongo-uri", "", "connection URI for the mongo backend")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	path := filepath.Join(cwd, config.FileName)

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			logger.Info("config already exists, skipping", "path", path)
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Storage.Backend = initBackend
	cfg.Storage.Codec = initCodec
	cfg.Storage.RedisURL = initRedisURL
	cfg.Storage.MongoURI = initMongoURI
	cfg.Analysis.Provider = initProvider

	// remote needs a key, which only comes from the environment
	if initProvider != "remote" {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	logger.Info("created config", "path", path)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✓ Created %s\n", config.FileName)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Optionally set GEMINI_API_KEY for remote analysis")
	fmt.Fprintln(out, "  2. Run 'mindcare write' to record your first day")
	return nil
}
