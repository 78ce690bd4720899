package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/cryptichearts/backend/internal/config"
	"github.com/cryptichearts/backend/internal/records"
	"github.com/cryptichearts/backend/internal/services"
)

var (
	asDID   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "heartsctl",
	Short: "Inspect and edit a CrypticHearts identity in the record store",
	Long: "heartsctl acts as --did against the store configured by STORE_BACKEND, DATA_DIR and MONGO_URI. " +
		"With the memory backend, do not run it while the server uses the same DATA_DIR.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if asDID == "" {
			return fmt.Errorf("--did is required")
		}
		return nil
	},
}

func Execute() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asDID, "did", os.Getenv("HEARTS_DID"), "identity to act as (env HEARTS_DID)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for store calls")
	// glog flags such as -v and -logtostderr
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// withSession opens the configured store, runs fn as --did and closes the store.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *services.Session) error) error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	network, closeStore, err := records.Open(ctx, records.OpenOptions{
		Backend:  cfg.StoreBackend,
		DataDir:  cfg.DataDir,
		MongoURI: cfg.MongoURI,
		MongoDB:  cfg.MongoDB,
	})
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	s := services.NewSession(network.Connect(asDID), nil, services.Options{
		BatchLimit:    cfg.BatchConcurrency,
		MaxImageBytes: cfg.MaxImageBytes,
	})
	return fn(ctx, s)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
