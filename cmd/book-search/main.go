// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the book-search CLI: an interactive,
// debounced search client for a paginated book search endpoint, plus a
// one-shot search command for scripts.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simp-lee/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/book-search/internal/logging"
	"github.com/pdiddy/book-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded from defaults, the config file, environment, and flags
// before any subcommand runs.
var cfg types.Config

// procLogger is closed after the subcommand finishes.
var procLogger *logger.Logger

// rootCmd is the base command for the book-search CLI.
var rootCmd = &cobra.Command{
	Use:   "book-search",
	Short: "Search a book catalog from the terminal",
	Long: `book-search is a client for a paginated book search endpoint
(GET {base_url}books?search=...&limit=10&page=1&sortBy=name&order=asc).

Use "interactive" for search-as-you-type with paging and sorting, or
"search" to fetch a single page for scripting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.Setup(&cfg.Log)
		if err != nil {
			return fmt.Errorf("setting up logger: %w", err)
		}
		procLogger = l
		slog.Debug("configuration loaded",
			slog.String("base_url", cfg.Search.BaseURL),
			slog.Duration("debounce", cfg.Search.Debounce),
			slog.Int("limit", cfg.Search.Limit))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if procLogger == nil {
			return nil
		}
		return procLogger.Close()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./book-search.yaml or ~/.config/book-search/book-search.yaml)")
	pf.String("base-url", types.DefaultBaseURL, "search endpoint prefix; \"books\" is appended")
	pf.Int("limit", types.DefaultLimit, "results per page")
	pf.Duration("debounce", types.DefaultDebounce, "quiet period after typing before a search fires")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	viper.BindPFlag("base_url", pf.Lookup("base-url"))
	viper.BindPFlag("limit", pf.Lookup("limit"))
	viper.BindPFlag("debounce", pf.Lookup("debounce"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("book-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "book-search"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers defaults, environment (BOOK_SEARCH_*), the config file
// already read into v, and bound flags, then validates the result.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("BOOK_SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("base_url", d.Search.BaseURL)
	v.SetDefault("timeout", d.Search.Timeout)
	v.SetDefault("user_agent", d.Search.UserAgent)
	v.SetDefault("max_retries", d.Search.MaxRetries)
	v.SetDefault("requests_per_second", d.Search.RequestsPerSecond)
	v.SetDefault("limit", d.Search.Limit)
	v.SetDefault("debounce", d.Search.Debounce)
	v.SetDefault("date_layout", d.Search.DateLayout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
