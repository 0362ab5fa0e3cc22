package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/store"
)

var (
	trainCategories []string
	trainHoldout    float64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train per-category pricing models from the stored corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("train"); err != nil {
			return err
		}

		cats, err := resolveCategories(trainCategories)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pats, err := loadPatterns()
		if err != nil {
			return err
		}
		trainer := ensemble.NewTrainer(pats)

		holdout := trainHoldout
		if holdout == 0 {
			holdout = cfg.Train.Holdout
		}

		// Categories train independently; a failure in one aborts the
		// others but never touches an already-published artifact.
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range cats {
			g.Go(func() error {
				return trainCategory(gctx, st, trainer, c, holdout)
			})
		}
		return g.Wait()
	},
}

func trainCategory(ctx context.Context, st store.Store, trainer *ensemble.Trainer, c model.Category, holdout float64) error {
	log := zap.L().With(zap.String("category", string(c)))

	listings, err := st.ListListings(ctx, store.ListingFilter{Category: c})
	if err != nil {
		return err
	}
	log.Info("training corpus loaded", zap.Int("listings", len(listings)))

	run, err := st.CreateRun(ctx, c)
	if err != nil {
		return err
	}

	raw := make([]model.Listing, len(listings))
	for i, ll := range listings {
		raw[i] = ll.Listing
	}

	m, err := trainer.Train(ctx, ensemble.TrainConfig{
		Category: c,
		Outlier:  cfg.Train.OutlierFor(c),
		Weights:  cfg.Train.Weights,
		Holdout:  holdout,
		Seed:     cfg.Train.Seed,
	}, raw)
	if err != nil {
		if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
			log.Warn("could not journal failed run", zap.Error(ferr))
		}
		return eris.Wrapf(err, "train %s", c)
	}

	if err := ensemble.Save(cfg.Models.Dir, m); err != nil {
		if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
			log.Warn("could not journal failed run", zap.Error(ferr))
		}
		return eris.Wrapf(err, "save %s model", c)
	}

	if err := st.CompleteRun(ctx, run.ID, m.Meta.Examples, m.Meta.Metrics); err != nil {
		return err
	}
	log.Info("model published",
		zap.String("run_id", m.Meta.RunID),
		zap.Int("examples", m.Meta.Examples),
		zap.Float64("train_mae", m.Meta.Metrics["train_mae"]))
	return nil
}

func resolveCategories(names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return model.Categories(), nil
	}
	var out []model.Category
	for _, n := range names {
		c, ok := model.ParseCategory(n)
		if !ok {
			return nil, eris.Errorf("unknown category %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

func init() {
	trainCmd.Flags().StringSliceVar(&trainCategories, "category", nil, "categories to train (default all)")
	trainCmd.Flags().Float64Var(&trainHoldout, "holdout", 0, "holdout fraction for evaluation (default from config)")
	rootCmd.AddCommand(trainCmd)
}
