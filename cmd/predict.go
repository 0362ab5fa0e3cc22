package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/predict"
)

var (
	predictTitle       string
	predictDescription string
	predictCondition   string
	predictCategory    string
	predictAsking      float64
	predictNoValidate  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate a price for a single listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := model.ParseCategory(predictCategory)
		if !ok {
			return eris.Errorf("unknown category %q", predictCategory)
		}

		pats, err := loadPatterns()
		if err != nil {
			return err
		}

		reg := ensemble.NewRegistry()
		if _, err := reg.LoadDir(cfg.Models.Dir); err != nil {
			return err
		}

		svc := predict.NewService(pats, reg)
		res, report, err := svc.Predict(model.Listing{
			Title:       predictTitle,
			Description: predictDescription,
			Condition:   predictCondition,
			Category:    c,
			AskingPrice: predictAsking,
		}, predict.Options{SkipValidation: predictNoValidate})
		if err != nil {
			return err
		}

		out := map[string]any{"result": res}
		if !report.Valid {
			out["rejection"] = report
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictTitle, "title", "", "listing title (required)")
	predictCmd.Flags().StringVar(&predictDescription, "description", "", "listing description")
	predictCmd.Flags().StringVar(&predictCondition, "condition", "", "declared condition")
	predictCmd.Flags().StringVar(&predictCategory, "category", "", "listing category (required)")
	predictCmd.Flags().Float64Var(&predictAsking, "asking", 0, "asking price, for deviation reporting")
	predictCmd.Flags().BoolVar(&predictNoValidate, "no-validate", false, "skip the consistency gate")
	_ = predictCmd.MarkFlagRequired("title")
	_ = predictCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(predictCmd)
}
