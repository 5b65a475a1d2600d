package main

import (
	"fmt"
	"strings"

	"github.com/jchantrell/unzap/internal/bundle"
	"github.com/jchantrell/unzap/internal/utils"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <bundle>",
	Short: "List the entries of a bundle",
	Long: `List prints the entry table of a bundle without decoding anything:
index, storage kind, decoded and encoded sizes, zblock count and name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := bundle.Open(args[0])
		if err != nil {
			return err
		}
		defer cat.Close()

		fmt.Printf("%-6s %-10s %12s %12s %7s  %s\n", "Index", "Kind", "Decoded", "Encoded", "Blocks", "Name")
		fmt.Println(strings.Repeat("-", 80))

		var decoded, encoded int64
		counts := make(map[string]int)

		for _, e := range cat.Entries() {
			kind := e.Kind()
			counts[kind]++

			encodedStr := "-"
			if !e.Empty() {
				encodedStr = utils.Number(int64(e.EncodedSize))
				encoded += int64(e.EncodedSize)
				decoded += int64(e.DecodedSize)
			}

			fmt.Printf("%-6d %-10s %12s %12s %7d  %s\n",
				e.Index, kind, utils.Number(int64(e.DecodedSize)), encodedStr, len(e.ZBlocks), e.Name)
		}

		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("%d entries (%d compressed, %d raw, %d empty), %s decoded from %s\n",
			cat.Len(), counts["compressed"], counts["raw"], counts["empty"],
			utils.Bytes(decoded), utils.Bytes(encoded))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
