package linear_regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRidgeRecoversLinearRelation(t *testing.T) {
	// y = 3 + 2*a - b
	var x [][]float64
	var y []float64
	for a := 0.0; a < 10; a++ {
		for b := 0.0; b < 5; b++ {
			x = append(x, []float64{a, b})
			y = append(y, 3+2*a-b)
		}
	}

	model, err := FitRidge(x, y, 1e-9)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, model.Intercept, 1e-6)
	assert.InDelta(t, 2.0, model.Coef[0], 1e-6)
	assert.InDelta(t, -1.0, model.Coef[1], 1e-6)
	assert.InDelta(t, 3+2*4.0-2, model.Predict([]float64{4, 2}), 1e-6)
	assert.Equal(t, 50, model.N)
	assert.InDelta(t, 1.0, model.R2, 1e-9)
}

func TestFitRidgeR2(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	noisy, err := FitRidge(x, []float64{2, 1, 4, 3, 6, 5}, 1e-9)
	require.NoError(t, err)
	assert.Greater(t, noisy.R2, 0.5)
	assert.Less(t, noisy.R2, 1.0)

	constant, err := FitRidge(x, []float64{4, 4, 4, 4, 4, 4}, 1)
	require.NoError(t, err)
	assert.Zero(t, constant.R2)
}

func TestFitRidgeShrinksTowardMean(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{0, 1, 2, 3}

	loose, err := FitRidge(x, y, 0.001)
	require.NoError(t, err)
	tight, err := FitRidge(x, y, 1000)
	require.NoError(t, err)

	assert.Less(t, tight.Coef[0], loose.Coef[0])
	assert.InDelta(t, 1.5, tight.Predict([]float64{1.5}), 1e-9, "prediction at the feature mean is the target mean")
}

func TestFitRidgeWithoutFeaturesPredictsMean(t *testing.T) {
	model, err := FitRidge([][]float64{{}, {}, {}}, []float64{1, 2, 6}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, model.Predict(nil), 1e-12)
}

func TestFitRidgeSingular(t *testing.T) {
	x := [][]float64{{1, 2}, {1, 2}, {1, 2}}
	_, err := FitRidge(x, []float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestFitRidgeRejectsMismatchedInput(t *testing.T) {
	_, err := FitRidge([][]float64{{1}}, []float64{1, 2}, 1)
	assert.Error(t, err)

	_, err = FitRidge(nil, nil, 1)
	assert.Error(t, err)
}
