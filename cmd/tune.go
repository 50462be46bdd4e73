package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/integrity-cli/internal/profile"
)

var tuneForce bool

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Detect host resources and print the tuned configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if tuneForce {
			// Dropping the snapshot forces a fresh detect-and-derive.
			if err := os.Remove(cfg.Tuning.ConfigPath); err != nil && !os.IsNotExist(err) {
				return eris.Wrap(err, "remove config snapshot")
			}
		}

		store := profile.NewConfigStore(cfg.Tuning.ConfigPath, cfg.Tuning)
		tuned, err := store.LoadConfig(ctx)
		if err != nil {
			return eris.Wrap(err, "load tuned config")
		}

		out, err := json.MarshalIndent(tuned, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode config")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	tuneCmd.Flags().BoolVar(&tuneForce, "force", false, "discard the persisted snapshot and re-tune from scratch")
	rootCmd.AddCommand(tuneCmd)
}
