package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bazario-group/pricing-cli/internal/extract"
	"github.com/bazario-group/pricing-cli/internal/model"
)

var (
	extractText     string
	extractCategory string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Show the spec extracted from raw listing text",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := model.ParseCategory(extractCategory)
		if !ok {
			return eris.Errorf("unknown category %q", extractCategory)
		}

		pats, err := loadPatterns()
		if err != nil {
			return err
		}

		spec := extract.New(pats).Extract(extractText, c)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(spec)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractText, "text", "", "raw listing text (required)")
	extractCmd.Flags().StringVar(&extractCategory, "category", "", "listing category (required)")
	_ = extractCmd.MarkFlagRequired("text")
	_ = extractCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(extractCmd)
}
