package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptichearts/backend/internal/config"
	"github.com/cryptichearts/backend/internal/records"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the memory backend's record snapshot in DATA_DIR",
	Args:  cobra.NoArgs,
	// acts on the whole store, not as an identity
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.StoreBackend != "" && cfg.StoreBackend != records.BackendMemory {
			return fmt.Errorf("reset only applies to the %s backend, STORE_BACKEND is %q", records.BackendMemory, cfg.StoreBackend)
		}
		if !resetConfirmed {
			return fmt.Errorf("this deletes every record under %s; pass --yes to confirm", cfg.DataDir)
		}
		if err := records.RemoveSnapshot(cfg.DataDir); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed record snapshot in %s\n", cfg.DataDir)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm deleting all records")
	rootCmd.AddCommand(resetCmd)
}
