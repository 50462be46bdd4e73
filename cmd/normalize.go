package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/integrity-cli/internal/normalize"
	"github.com/sells-group/integrity-cli/internal/profile"
)

var normalizeInput string

var normalizeCmd = &cobra.Command{
	Use:   "normalize <collection>",
	Short: "Report metadata normalization results for a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := profile.NewConfigStore(cfg.Tuning.ConfigPath, cfg.Tuning)
		tuned, err := store.LoadConfig(ctx)
		if err != nil {
			return eris.Wrap(err, "load tuned config")
		}

		src, err := openSource(ctx, normalizeInput)
		if err != nil {
			return err
		}
		defer src.Close()

		records, err := fetchCollection(ctx, src, args[0])
		if err != nil {
			return err
		}

		result := normalize.New(tuned.Rules).Normalize(records)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode result")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeInput, "input", "", "JSONL file to normalize instead of the configured source")
	rootCmd.AddCommand(normalizeCmd)
}
