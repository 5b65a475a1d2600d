package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jchantrell/unzap/internal/cache"
	"github.com/jchantrell/unzap/internal/database"
	"github.com/jchantrell/unzap/internal/utils"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Query the extraction manifest",
	Long: `Query runs SQL against the manifest database written by extract, or
lists the entries recorded by the most recent run.

The manifest has two tables: bundles, one row per extraction run, and
entries, one row per written entry with its xxhash64 digest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		listEntries, err := cmd.Flags().GetBool("entries")
		if err != nil {
			return fmt.Errorf("failed to get entries flag: %w", err)
		}

		c := cache.CacheManager()
		path := c.ResolveManifest(cfg.Manifest)
		if !c.FileExists(path) {
			return fmt.Errorf("no manifest at %s, run extract first", path)
		}

		slog.Debug("Query parameters", "manifest", path, "entries", listEntries)

		db, err := database.NewDatabase(ctx, database.DefaultDatabaseOptions(path))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if listEntries {
			manifest, err := database.LatestManifest(ctx, db)
			if err != nil {
				return err
			}

			records, err := manifest.Entries(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%-6s %-10s %12s %-16s  %s\n", "Index", "Kind", "Size", "XXHash", "Path")
			fmt.Println(strings.Repeat("-", 80))
			for _, rec := range records {
				fmt.Printf("%-6d %-10s %12s %016x  %s\n",
					rec.Index, rec.Kind, utils.Number(int64(rec.DecodedSize)), rec.Hash, rec.Location)
			}

			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("no query provided, use --entries to list the latest run")
		}

		query := args[0]
		slog.Debug("Executing SQL query", "query", query)

		rows, err := db.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("executing query: %w", err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("getting column names: %w", err)
		}

		fmt.Println(strings.Join(columns, "\t"))

		separators := make([]string, len(columns))
		for i, col := range columns {
			separators[i] = strings.Repeat("-", len(col))
		}
		fmt.Println(strings.Join(separators, "\t"))

		for rows.Next() {
			values := make([]any, len(columns))
			valuePtrs := make([]any, len(columns))
			for i := range values {
				valuePtrs[i] = &values[i]
			}

			if err := rows.Scan(valuePtrs...); err != nil {
				return fmt.Errorf("scanning row: %w", err)
			}

			fields := make([]string, len(values))
			for i, val := range values {
				switch v := val.(type) {
				case nil:
					fields[i] = "NULL"
				case []byte:
					fields[i] = string(v)
				default:
					fields[i] = fmt.Sprint(v)
				}
			}
			fmt.Println(strings.Join(fields, "\t"))
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating rows: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("entries", false, "List entries recorded by the latest extraction run")
}
