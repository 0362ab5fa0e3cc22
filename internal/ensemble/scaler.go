package ensemble

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// RobustScaler centers on the median and scales by the interquartile
// range, so the price-distorting extremes that survive the outlier
// filter cannot dominate the feature scale the way mean/std scaling
// would let them. Fit once on the training split; the identical fitted
// scaler is reused unmodified at serving time.
type RobustScaler struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// FitScaler computes per-column medians and IQRs. Constant columns get
// scale 1 so transformation stays finite.
func FitScaler(X [][]float64) (*RobustScaler, error) {
	if len(X) == 0 {
		return nil, eris.New("ensemble: scaler fit needs at least one row")
	}

	cols := len(X[0])
	s := &RobustScaler{
		Center: make([]float64, cols),
		Scale:  make([]float64, cols),
	}

	col := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			if len(X[i]) != cols {
				return nil, eris.Errorf("ensemble: ragged matrix at row %d", i)
			}
			col[i] = X[i][j]
		}
		sort.Float64s(col)

		s.Center[j] = stat.Quantile(0.5, stat.Empirical, col, nil)
		iqr := stat.Quantile(0.75, stat.Empirical, col, nil) - stat.Quantile(0.25, stat.Empirical, col, nil)
		if iqr == 0 {
			iqr = 1
		}
		s.Scale[j] = iqr
	}
	return s, nil
}

// Transform scales one vector. The input is not modified.
func (s *RobustScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Center[j]) / s.Scale[j]
	}
	return out
}

// TransformMatrix scales every row.
func (s *RobustScaler) TransformMatrix(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}

// Len returns the column count the scaler was fitted on.
func (s *RobustScaler) Len() int { return len(s.Center) }
