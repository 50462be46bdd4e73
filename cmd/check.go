package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/integrity-cli/internal/integrity"
	"github.com/sells-group/integrity-cli/internal/profile"
	"github.com/sells-group/integrity-cli/internal/quality"
	"github.com/sells-group/integrity-cli/internal/validate"
)

var (
	checkInput     string
	checkRules     string
	checkBatchSize int
	checkThreshold float64
	checkFormat    string
	checkOutput    string
)

var checkCmd = &cobra.Command{
	Use:   "check <collection>",
	Short: "Run a full integrity check on a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		collection := args[0]

		store := profile.NewConfigStore(cfg.Tuning.ConfigPath, cfg.Tuning)
		tuned, err := store.LoadConfig(ctx)
		if err != nil {
			return eris.Wrap(err, "load tuned config")
		}
		if checkRules != "" {
			tuned.Rules, err = validate.LoadRulesFile(checkRules, tuned.Rules)
			if err != nil {
				return err
			}
		}

		src, err := openSource(ctx, checkInput)
		if err != nil {
			return err
		}
		defer src.Close()

		records, err := fetchCollection(ctx, src, collection)
		if err != nil {
			return err
		}
		zap.L().Info("fetched collection",
			zap.String("collection", collection),
			zap.Int("records", len(records)),
		)

		threshold := checkThreshold
		if threshold == 0 {
			threshold = cfg.Quality.Threshold
		}
		if err := quality.ValidateWeights(cfg.Quality.Weights); err != nil {
			return eris.Wrap(err, "quality weights")
		}

		orch := integrity.New(tuned, cfg.Dedup, cfg.Quality.Weights)
		report, err := orch.RunIntegrityCheck(ctx, collection, records, &integrity.RunOptions{
			BatchSize:        checkBatchSize,
			QualityThreshold: threshold,
		})
		if err != nil {
			return eris.Wrap(err, "run integrity check")
		}

		var rendered []byte
		switch checkFormat {
		case "markdown":
			rendered = []byte(integrity.FormatReport(report))
		case "json":
			rendered, err = json.MarshalIndent(report, "", "  ")
			if err != nil {
				return eris.Wrap(err, "encode report")
			}
		default:
			return eris.Errorf("unknown format %q", checkFormat)
		}

		if checkOutput != "" {
			if err := os.WriteFile(checkOutput, rendered, 0o644); err != nil {
				return eris.Wrapf(err, "write report to %s", checkOutput)
			}
			fmt.Printf("report written to %s\n", checkOutput)
			return nil
		}
		fmt.Println(string(rendered))
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkInput, "input", "", "JSONL file to check instead of the configured source")
	checkCmd.Flags().StringVar(&checkRules, "rules", "", "YAML validation rules file merged over the tuned rules")
	checkCmd.Flags().IntVar(&checkBatchSize, "batch-size", 0, "override the tuned batch size")
	checkCmd.Flags().Float64Var(&checkThreshold, "quality-threshold", 0, "flag the report when overall quality falls below this (defaults to quality.threshold)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "markdown", "output format: markdown or json")
	checkCmd.Flags().StringVar(&checkOutput, "output", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(checkCmd)
}
