package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// float64 machine epsilon; singular values below eps·max(n, p)·σmax count as zero
const epsilon = 2.220446049250313e-16

var (
	ErrNoRows    = errors.New("no training rows")
	ErrNotFinite = errors.New("result is not finite")
)

type LinearRegression struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

// FitLinearRegression fits ordinary least squares with an intercept. The
// features are centred and scaled to unit norm, then solved through an SVD,
// so columns of very different magnitude keep their coefficients. Constant
// columns get a zero coefficient; other rank-deficient designs get the
// minimum-norm solution.
func FitLinearRegression(x [][]float64, y []float64) (*LinearRegression, error) {
	if len(x) == 0 {
		return nil, ErrNoRows
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit: %d rows but %d targets", len(x), len(y))
	}
	n, p := len(x), len(x[0])
	if p == 0 {
		return &LinearRegression{Intercept: stat.Mean(y, nil), Coef: []float64{}}, nil
	}

	design := mat.NewDense(n, p, nil)
	for r, features := range x {
		if len(features) != p {
			return nil, fmt.Errorf("fit: row %d has %d features, want %d", r, len(features), p)
		}
		design.SetRow(r, features)
	}

	means := make([]float64, p)
	norms := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, design)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		norms[j] = floats.Norm(col, 2)
		if norms[j] > 0 {
			floats.Scale(1/norms[j], col)
		}
		design.SetCol(j, col)
	}

	yMean := stat.Mean(y, nil)
	target := mat.NewVecDense(n, nil)
	for i, v := range y {
		target.SetVec(i, v-yMean)
	}

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThin) {
		return nil, errors.New("fit: singular value decomposition did not converge")
	}

	reg := &LinearRegression{Intercept: yMean, Coef: make([]float64, p)}
	rank := svd.Rank(float64(max(n, p)) * epsilon)
	if rank == 0 {
		return reg, nil
	}

	var beta mat.VecDense
	svd.SolveVecTo(&beta, target, rank)
	for j := 0; j < p; j++ {
		if norms[j] == 0 {
			continue
		}
		reg.Coef[j] = beta.AtVec(j) / norms[j]
		reg.Intercept -= reg.Coef[j] * means[j]
	}
	if !reg.finite() {
		return nil, fmt.Errorf("fit: %w", ErrNotFinite)
	}
	return reg, nil
}

func (m *LinearRegression) finite() bool {
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return false
	}
	for _, c := range m.Coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coef) {
		return 0, fmt.Errorf("predict: got %d features, want %d", len(features), len(m.Coef))
	}
	y := m.Intercept + floats.Dot(m.Coef, features)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("predict: %w", ErrNotFinite)
	}
	return y, nil
}
