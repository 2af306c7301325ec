package linear_regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrSingular = errors.New("normal equations are singular")

// FitRidge обучает гребневую регрессию y по колонкам x, свободный член не штрафуется.
// x хранится по строкам: x[i] - признаки строки i.
//
// Признаки и цель центрируются, затем (XᵀX + αI)β = Xᵀy решается разложением Холецкого.
func FitRidge(x [][]float64, y []float64, alpha float64) (*RidgeModel, error) {
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("ridge regression needs at least one row")
	}
	if len(x) != n {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) differ", len(x), n)
	}
	p := len(x[0])

	yMean := stat.Mean(y, nil)
	if p == 0 {
		return &RidgeModel{Intercept: yMean, Alpha: alpha, N: n}, nil
	}

	xMeans := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			col[i] = x[i][j]
		}
		xMeans[j] = stat.Mean(col, nil)
	}

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, x[i][j]-xMeans[j])
		}
		yc.SetVec(i, y[i]-yMean)
	}

	var xtx mat.Dense
	xtx.Mul(xc.T(), xc)
	a := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := xtx.At(i, j)
			if i == j {
				v += alpha
			}
			a.SetSym(i, j, v)
		}
	}

	var xty mat.VecDense
	xty.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, ErrSingular
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("failed to solve normal equations: %w", err)
	}

	coef := make([]float64, p)
	intercept := yMean
	for j := 0; j < p; j++ {
		coef[j] = beta.AtVec(j)
		intercept -= coef[j] * xMeans[j]
	}

	model := &RidgeModel{
		Intercept: intercept,
		Coef:      coef,
		Alpha:     alpha,
		N:         n,
	}

	estimates := make([]float64, n)
	for i := range x {
		estimates[i] = model.Predict(x[i])
	}
	// для постоянной цели получается NaN
	if r2 := stat.RSquaredFrom(estimates, y, nil); !math.IsNaN(r2) {
		model.R2 = r2
	}
	return model, nil
}
