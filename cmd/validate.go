package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/validate"
)

var (
	validateText     string
	validateCategory string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the brand/model consistency gate on listing text",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := model.ParseCategory(validateCategory)
		if !ok {
			return eris.Errorf("unknown category %q", validateCategory)
		}

		pats, err := loadPatterns()
		if err != nil {
			return err
		}

		report := validate.New(pats).Validate(validateText, c)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateText, "text", "", "raw listing text (required)")
	validateCmd.Flags().StringVar(&validateCategory, "category", "", "listing category (required)")
	_ = validateCmd.MarkFlagRequired("text")
	_ = validateCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(validateCmd)
}
