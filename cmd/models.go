package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/store"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the published model artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		type artifactInfo struct {
			Category  string             `json:"category"`
			RunID     string             `json:"run_id"`
			TrainedAt string             `json:"trained_at"`
			Examples  int                `json:"examples"`
			Filtered  int                `json:"filtered"`
			Metrics   map[string]float64 `json:"metrics,omitempty"`
		}

		var out []artifactInfo
		for _, c := range model.Categories() {
			path := ensemble.ArtifactPath(cfg.Models.Dir, c)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			m, err := ensemble.Load(path)
			if err != nil {
				return err
			}
			out = append(out, artifactInfo{
				Category:  string(c),
				RunID:     m.Meta.RunID,
				TrainedAt: m.Meta.TrainedAt.Format("2006-01-02 15:04:05"),
				Examples:  m.Meta.Examples,
				Filtered:  m.Meta.Filtered,
				Metrics:   m.Meta.Metrics,
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the training run journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{Status: model.RunStatus(runsStatus)})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	},
}

var runsStatus string

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (running, complete, failed)")
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(runsCmd)
}
