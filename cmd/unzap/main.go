package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jchantrell/unzap/internal/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string

	manifestPath string
	logLevel     string
	logFormat    string
	noProgress   bool
)

var rootCmd = &cobra.Command{
	Use:   "unzap",
	Short: "ZAP bundle extraction tool",
	Long: `unzap unpacks ZAP game bundles into a directory tree.

Entries are read in table order, decompressed when they were stored with
the bundle's LZSS variant, and written under their stored names. Every run
can be recorded in a SQLite manifest which the query command reads back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("manifest") {
			cfg.Manifest = manifestPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		applyExtractFlags(cmd)

		// flags may have replaced validated values
		if err := cfg.Validate(); err != nil {
			return err
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}

		slog.SetDefault(slog.New(handler))

		slog.Debug("Configuration",
			"output", cfg.Output,
			"manifest", cfg.Manifest,
			"match", cfg.Match,
			"continue_on_error", cfg.ContinueOnError,
			"verify_meta", cfg.VerifyMeta,
			"max_block_size", cfg.MaxBlockSize,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

// progressEnabled reports whether a progress bar would be readable next to the logs
func progressEnabled() bool {
	return !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is unzap.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "manifest database path (default is ~/.unzap/manifest.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}
