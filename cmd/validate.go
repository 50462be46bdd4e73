package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/integrity-cli/internal/profile"
	"github.com/sells-group/integrity-cli/internal/validate"
)

var (
	validateInput string
	validateRules string
)

var validateCmd = &cobra.Command{
	Use:   "validate <collection>",
	Short: "Validate documents without the rest of the pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := profile.NewConfigStore(cfg.Tuning.ConfigPath, cfg.Tuning)
		tuned, err := store.LoadConfig(ctx)
		if err != nil {
			return eris.Wrap(err, "load tuned config")
		}
		if validateRules != "" {
			tuned.Rules, err = validate.LoadRulesFile(validateRules, tuned.Rules)
			if err != nil {
				return err
			}
		}

		src, err := openSource(ctx, validateInput)
		if err != nil {
			return err
		}
		defer src.Close()

		records, err := fetchCollection(ctx, src, args[0])
		if err != nil {
			return err
		}

		results := validate.New(tuned.Rules).ValidateBatch(records)
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode results")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "JSONL file to validate instead of the configured source")
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "YAML validation rules file merged over the tuned rules")
	rootCmd.AddCommand(validateCmd)
}
