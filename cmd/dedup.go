package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/integrity-cli/internal/dedup"
)

var (
	dedupInput     string
	dedupThreshold float64
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <collection>",
	Short: "Detect exact and fuzzy duplicates in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		src, err := openSource(ctx, dedupInput)
		if err != nil {
			return err
		}
		defer src.Close()

		records, err := fetchCollection(ctx, src, args[0])
		if err != nil {
			return err
		}

		dedupCfg := cfg.Dedup
		if dedupThreshold > 0 {
			dedupCfg.SimilarityThreshold = dedupThreshold
		}

		report := dedup.New(dedupCfg).DetectDuplicates(ctx, args[0], records)
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode report")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	dedupCmd.Flags().StringVar(&dedupInput, "input", "", "JSONL file to scan instead of the configured source")
	dedupCmd.Flags().Float64Var(&dedupThreshold, "threshold", 0, "override the fuzzy similarity threshold")
	rootCmd.AddCommand(dedupCmd)
}
