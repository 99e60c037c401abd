package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/felixbrock/flightprice/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoModel = errors.New("no model loaded")

type Metrics struct {
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
	R2        float64 `json:"r2"`
	RMSE      float64 `json:"rmse"`
}

// Model is the trained artifact: one encoder per categorical column and the
// regression fitted on the encoded features.
type Model struct {
	TrainedAt  time.Time                `json:"trained_at"`
	Features   []string                 `json:"features"`
	Encoders   map[string]*LabelEncoder `json:"encoders"`
	Regression *LinearRegression        `json:"regression"`
	Metrics    Metrics                  `json:"metrics"`
}

type TrainOptions struct {
	TestSize float64
	Seed     int64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{TestSize: 0.2, Seed: 100}
}

// Train fits encoders on the whole dataset, then fits the regression on a
// seeded shuffle of it and scores the held-out part.
func Train(ds *Dataset, opts TrainOptions) (*Model, error) {
	if ds == nil || len(ds.Fares) == 0 {
		return nil, ErrNoRows
	}
	if opts.TestSize < 0 || opts.TestSize >= 1 {
		return nil, fmt.Errorf("train: test size %v must be in [0, 1)", opts.TestSize)
	}

	m := &Model{
		Features: append([]string{}, FeatureOrder...),
		Encoders: make(map[string]*LabelEncoder, len(CategoricalColumns)),
	}
	for _, col := range CategoricalColumns {
		values := make([]string, len(ds.Fares))
		for i, fare := range ds.Fares {
			values[i], _ = fare.Flight.Categorical(col)
		}
		m.Encoders[col] = FitLabelEncoder(values)
	}

	train, test := split(len(ds.Fares), opts)

	x := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, idx := range train {
		x[i] = m.encode(ds.Fares[idx].Flight)
		y[i] = ds.Fares[idx].Price
	}
	reg, err := FitLinearRegression(x, y)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	m.Regression = reg

	m.Metrics = Metrics{TrainRows: len(train), TestRows: len(test)}
	if len(test) > 0 {
		m.Metrics.R2, m.Metrics.RMSE = m.score(ds, test)
	}
	m.TrainedAt = time.Now().UTC()

	return m, nil
}

// split returns shuffled train and test row indices. The training side always
// keeps at least one row.
func split(n int, opts TrainOptions) ([]int, []int) {
	perm := rand.New(rand.NewSource(opts.Seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * opts.TestSize))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

func (m *Model) score(ds *Dataset, rows []int) (float64, float64) {
	want := make([]float64, len(rows))
	got := make([]float64, len(rows))
	for i, idx := range rows {
		fare := ds.Fares[idx]
		want[i] = fare.Price
		got[i], _ = m.Regression.Predict(m.encode(fare.Flight))
	}

	// Undefined when every held-out price is the same.
	r2 := stat.RSquaredFrom(got, want, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return r2, floats.Distance(got, want, 2) / math.Sqrt(float64(len(rows)))
}

func (m *Model) encode(f domain.FlightData) []float64 {
	features := make([]float64, 0, len(FeatureOrder))
	for _, col := range CategoricalColumns {
		v, _ := f.Categorical(col)
		features = append(features, float64(m.Encoders[col].TransformOrFirst(v)))
	}
	return append(features, f.Duration, float64(f.DaysLeft))
}

func (m *Model) validate() error {
	if m.Regression == nil {
		return errors.New("model: missing regression")
	}
	if len(m.Regression.Coef) != len(FeatureOrder) {
		return fmt.Errorf("model: %d coefficients, want %d", len(m.Regression.Coef), len(FeatureOrder))
	}
	if !m.Regression.finite() {
		return fmt.Errorf("model: regression %w", ErrNotFinite)
	}
	for _, col := range CategoricalColumns {
		enc, ok := m.Encoders[col]
		if !ok || enc == nil || len(enc.Classes) == 0 {
			return fmt.Errorf("model: missing encoder for %q", col)
		}
		// Transform binary-searches the classes.
		if !slices.IsSorted(enc.Classes) {
			return fmt.Errorf("model: classes of %q are not sorted", col)
		}
	}
	return nil
}

// Predict returns the fare for a flight. Labels the model was not trained on
// are treated as the first known label of their column.
func (m *Model) Predict(f domain.FlightData) (float64, error) {
	if m == nil {
		return 0, ErrNoModel
	}
	if err := m.validate(); err != nil {
		return 0, err
	}
	return m.Regression.Predict(m.encode(f))
}

// Classes lists the known labels of a categorical column.
func (m *Model) Classes(column string) ([]string, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	enc, ok := m.Encoders[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return append([]string{}, enc.Classes...), nil
}
