package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/cache"
	"github.com/jchantrell/unzap/internal/database"
	"github.com/jchantrell/unzap/internal/extract"
	"github.com/jchantrell/unzap/internal/lzss"
	"github.com/jchantrell/unzap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	outputDir       string
	match           []string
	continueOnError bool
	verifyMeta      bool
	maxBlockSize    int
	noManifest      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <bundle>",
	Short: "Extract every entry of a bundle into a directory",
	Long: `Extract walks the bundle's entry table in order and writes each entry to
the output directory under its stored name, with backslashes turned into
directory separators and the name lowercased.

Compressed entries are decoded block by block; raw entries are copied as
stored; empty entries are reported and skipped. By default the first
failing entry aborts the run. Use --continue-on-error to record failures
and keep going.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		bundlePath := args[0]

		cat, err := bundle.Open(bundlePath)
		if err != nil {
			return err
		}
		defer cat.Close()

		slog.Info("Starting extract...",
			"bundle", bundlePath,
			"entries", cat.Len(),
			"size", utils.Bytes(cat.Size()),
			"output", cfg.Output)

		var sink extract.Sink = extract.NewDirSink(cfg.Output)

		var manifest *database.Manifest
		if !noManifest {
			db, err := database.NewDatabase(ctx, database.DefaultDatabaseOptions(cache.CacheManager().ResolveManifest(cfg.Manifest)))
			if err != nil {
				return fmt.Errorf("opening manifest database: %w", err)
			}
			defer db.Close()

			absPath, err := filepath.Abs(bundlePath)
			if err != nil {
				absPath = bundlePath
			}

			manifest, err = database.NewManifest(ctx, db, absPath, cat, nil)
			if err != nil {
				return fmt.Errorf("creating manifest: %w", err)
			}
			sink = manifest.Sink(sink)
		}

		progress := utils.NewProgress(cat.Len(), progressEnabled())

		observers := extract.Observers{
			extract.LogObserver{},
			extract.ObserverFunc(func(ev extract.Event) {
				if ev.Status == extract.StatusStarting {
					progress.Start(ev.Entry.Name)
					return
				}
				progress.Advance(ev.Size)
			}),
		}

		x, err := extract.New(cat, sink,
			extract.WithObserver(observers),
			extract.WithDecoder(lzss.NewDecoder(cfg.MaxBlockSize)),
			extract.WithMatch(cfg.Match...),
			extract.WithContinueOnError(cfg.ContinueOnError),
			extract.WithVerifyMeta(cfg.VerifyMeta),
		)
		if err != nil {
			return fmt.Errorf("creating extractor: %w", err)
		}

		stats, runErr := x.Run(ctx)
		progress.Finish()

		// entries written before a failure stay recorded
		if manifest != nil {
			if err := manifest.Flush(context.Background()); err != nil {
				slog.Error("Failed to write manifest", "error", err)
			}
		}

		printStats(stats)

		if runErr != nil {
			return runErr
		}

		if manifest != nil {
			fmt.Println("Try running: unzap query --entries")
		}

		return nil
	},
}

func printStats(stats *extract.Stats) {
	duration := stats.EndTime.Sub(stats.StartTime)

	var entryRate, byteRate float64
	if seconds := duration.Seconds(); seconds > 0 {
		entryRate = float64(stats.Extracted) / seconds
		byteRate = float64(stats.BytesWritten) / seconds
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Printf("Entries visited: %s\n", utils.Number(int64(stats.Entries)))
	fmt.Printf("Entries extracted: %s (%s compressed)\n", utils.Number(int64(stats.Extracted)), utils.Number(int64(stats.Compressed)))
	fmt.Printf("Empty entries: %s\n", utils.Number(int64(stats.Empty)))
	fmt.Printf("Skipped entries: %s\n", utils.Number(int64(stats.Skipped)))
	fmt.Printf("Failed entries: %s\n", utils.Number(int64(stats.Failed)))
	fmt.Printf("Bytes written: %s\n", utils.Bytes(stats.BytesWritten))
	fmt.Printf("Duration: %s\n", utils.Duration(duration))
	fmt.Printf("Extraction rate: %s entries/sec, %s bytes/sec\n", utils.Rate(entryRate), utils.Rate(byteRate))
	fmt.Printf("Memory usage: %s\n", utils.Bytes(int64(memStats.Alloc)))
}

// applyExtractFlags copies explicitly set extract flags over the loaded config
func applyExtractFlags(cmd *cobra.Command) {
	if cmd != extractCmd {
		return
	}

	if cmd.Flags().Changed("output") {
		cfg.Output = outputDir
	}
	if cmd.Flags().Changed("match") {
		cfg.Match = match
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.ContinueOnError = continueOnError
	}
	if cmd.Flags().Changed("verify-meta") {
		cfg.VerifyMeta = verifyMeta
	}
	if cmd.Flags().Changed("max-block-size") {
		cfg.MaxBlockSize = maxBlockSize
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	extractCmd.Flags().StringSliceVar(&match, "match", []string{}, "only extract entries whose normalized name matches a glob (repeatable)")
	extractCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "record failing entries and keep going")
	extractCmd.Flags().BoolVar(&verifyMeta, "verify-meta", false, "compare each payload's duplicate meta with the entry table")
	extractCmd.Flags().IntVar(&maxBlockSize, "max-block-size", lzss.MaxBlockSize, "largest output of one compressed block, -1 for no limit")
	extractCmd.Flags().BoolVar(&noManifest, "no-manifest", false, "do not record the run in the manifest database")
}
