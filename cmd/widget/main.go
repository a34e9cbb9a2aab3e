// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the widget CLI. It drives the lookup
// pipeline from a terminal: suggestions, manual entries, interaction
// analysis, and a mock interaction API for the remote backends.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/WDD-CODER/ex-witget-v1/internal/config"
	"github.com/WDD-CODER/ex-witget-v1/internal/logging"
	"github.com/WDD-CODER/ex-witget-v1/internal/secrets"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, loaded before every command.
	cfg types.WidgetConfig

	// logger writes diagnostics to stderr; command output goes to stdout.
	logger = zap.NewNop()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the widget CLI.
var rootCmd = &cobra.Command{
	Use:   "widget",
	Short: "Medication and supplement interaction lookup",
	Long: `widget looks up medications and supplements by name and reports the
nutrient depletions and timing or dosage optimizations for a selection.

Suggestions come from a catalog (the embedded seed, a SQLite import of it, or
the remote API). Analysis runs against the built-in mock data or the remote
API; "widget serve" hosts a mock of that API locally.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		loadedSecrets, err = secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		if keys := loadedSecrets.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./widget.yaml or ~/.config/widget/widget.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of secret files (api-token)")
	pf.String("format", "table", "output format: table, json, or yaml")
	pf.Bool("json", false, "output results as JSON (same as --format json)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("catalog", "", "catalog backend: local, sqlite, or remote")
	pf.String("backend", "", "analysis backend: local or remote")
	pf.String("base-url", "", "interaction API base URL")

	bindFlag(config.KeyLogLevel, "log-level")
	bindFlag(config.KeyCatalogBackend, "catalog")
	bindFlag(config.KeyAnalysisBackend, "backend")
	bindFlag(config.KeyBaseURL, "base-url")
}

// bindFlag lets a persistent flag override a config key when it is set.
func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("widget")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "widget"))
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
