package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/config"
	"github.com/bazario-group/pricing-cli/internal/patterns"
	"github.com/bazario-group/pricing-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pricing-cli",
	Short: "Resale price estimation for used-goods listings",
	Long:  "Extracts specs from free-text listings, validates brand/model consistency, trains per-category ensemble models, and serves price predictions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadPatterns builds the pattern set, applying any configured
// precedence overrides.
func loadPatterns() (*patterns.Set, error) {
	pats := patterns.Default()
	if cfg.Patterns.OverridesPath != "" {
		if err := pats.LoadOverrides(cfg.Patterns.OverridesPath); err != nil {
			return nil, err
		}
	}
	return pats, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
