package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/model"
)

var (
	importCSVPath string
	importSource  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import labeled listings from CSV into the training corpus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrapf(err, "open csv %s", importCSVPath)
		}
		defer f.Close()

		batch, skipped, err := parseListingsCSV(f, importSource)
		if err != nil {
			return eris.Wrap(err, "parse csv")
		}

		n, err := st.AddListings(ctx, batch)
		if err != nil {
			return eris.Wrap(err, "store listings")
		}

		zap.L().Info("import complete",
			zap.Int("imported", n),
			zap.Int("skipped", skipped),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

// parseListingsCSV reads a header-keyed CSV. Required columns: title,
// category, price. Optional: description, condition, external_id. Rows
// with an unknown category or non-positive price are skipped, not fatal.
func parseListingsCSV(r io.Reader, source string) ([]model.LabeledListing, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, eris.Wrap(err, "read header")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"title", "category", "price"} {
		if _, ok := col[required]; !ok {
			return nil, 0, eris.Errorf("missing required column %q", required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.LabeledListing
	var skipped int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, eris.Wrap(err, "read row")
		}

		c, ok := model.ParseCategory(field(rec, "category"))
		if !ok {
			skipped++
			continue
		}
		price, err := strconv.ParseFloat(field(rec, "price"), 64)
		if err != nil || price <= 0 {
			skipped++
			continue
		}
		title := field(rec, "title")
		if title == "" {
			skipped++
			continue
		}

		out = append(out, model.LabeledListing{
			ExternalID: field(rec, "external_id"),
			Source:     source,
			Listing: model.Listing{
				Title:       title,
				Description: field(rec, "description"),
				Condition:   field(rec, "condition"),
				Category:    c,
				AskingPrice: price,
			},
		})
	}
	return out, skipped, nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	importCmd.Flags().StringVar(&importSource, "source", "csv", "source tag recorded on imported listings")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
