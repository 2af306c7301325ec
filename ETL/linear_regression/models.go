package linear_regression

// RidgeModel - обученная многомерная линейная модель y = Intercept + Coef·x
type RidgeModel struct {
	Intercept float64
	Coef      []float64
	Alpha     float64
	// Число обучающих строк
	N int
	// Коэффициент детерминации на обучающих строках
	R2 float64
}

// Predict вычисляет прогноз для одной строки признаков
func (m *RidgeModel) Predict(x []float64) float64 {
	y := m.Intercept
	for i, c := range m.Coef {
		y += c * x[i]
	}
	return y
}
