package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/extract"
	"github.com/jchantrell/unzap/internal/lzss"
	"github.com/jchantrell/unzap/internal/utils"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <bundle> <name>",
	Short: "Write one entry of a bundle to stdout",
	Long: `Cat decodes a single entry and writes it to stdout. Names are compared
after lowercasing and treating backslashes and slashes alike, so
"Data\Mods.dat" and "data/mods.dat" find the same entry.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := bundle.Open(args[0])
		if err != nil {
			return err
		}

		manager := bundle.NewManager(cat, lzss.NewDecoder(cfg.MaxBlockSize))
		defer manager.Close()

		name := args[1]
		data, err := manager.GetFile(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		entry, _ := manager.Entry(name)
		slog.Debug("Writing entry", "entry", entry.Name, "kind", entry.Kind(), "size", len(data))

		sink := &extract.WriterSink{W: os.Stdout}
		if _, err := sink.Write(context.Background(), entry, utils.NormalizeName(entry.Name), data); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
