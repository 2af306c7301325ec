package transform

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/LilVoxy/hr_etl/ETL/linear_regression"
	"github.com/LilVoxy/hr_etl/ETL/models"
)

// IterativeImputer оценивает пропуски целевой колонки гребневой регрессией по кругу
// по колонкам-предикторам. Каждый вызов обучает свои модели, между вызовами ничего не хранится.
type IterativeImputer struct {
	MaxIter   int
	Seed      int64
	Tolerance float64
	Alpha     float64
}

// ImputeResult описывает один fit-transform
type ImputeResult struct {
	Values     []float64
	Iterations int
	Converged  bool
	// R2 последней модели для целевой колонки; 0, если модель не обучалась
	R2 float64
}

// Impute возвращает target с заполненными NaN. predictors выровнены с target;
// их NaN тоже заполняются при обучении, но не возвращаются.
func (imp IterativeImputer) Impute(target []float64, predictors [][]float64) (*ImputeResult, error) {
	matrix := [][]float64{append([]float64(nil), target...)}
	for _, p := range predictors {
		if countObserved(p) > 0 {
			matrix = append(matrix, append([]float64(nil), p...))
		}
	}
	if countObserved(matrix[0]) == 0 {
		return nil, &ImputationError{Strategy: StrategyIterative, Reason: "column has no present values"}
	}

	rows := len(target)
	missing := make([][]bool, len(matrix))
	var maxAbs float64
	for j, col := range matrix {
		missing[j] = make([]bool, rows)
		var observed []float64
		for i, v := range col {
			if math.IsNaN(v) {
				missing[j][i] = true
				continue
			}
			observed = append(observed, v)
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
		mean := stat.Mean(observed, nil)
		for i := range col {
			if missing[j][i] {
				col[i] = mean
			}
		}
	}

	order := imp.imputationOrder(missing)
	result := &ImputeResult{}
	if len(order) == 0 || len(matrix) == 1 {
		result.Values = matrix[0]
		result.Converged = true
		return result, nil
	}

	threshold := imp.Tolerance * maxAbs
	for iter := 1; iter <= imp.MaxIter; iter++ {
		result.Iterations = iter
		change := 0.0
		for _, j := range order {
			delta, model := imp.updateColumn(matrix, missing, j)
			change = math.Max(change, delta)
			if j == 0 && model != nil {
				result.R2 = model.R2
			}
		}
		if change < threshold {
			result.Converged = true
			break
		}
	}

	result.Values = matrix[0]
	return result, nil
}

// imputationOrder перечисляет колонки с пропусками, начиная с наименьшего числа пропусков.
// Равные перемешиваются генератором с фиксированным seed.
func (imp IterativeImputer) imputationOrder(missing [][]bool) []int {
	type entry struct{ col, count int }
	var entries []entry
	for j, m := range missing {
		n := 0
		for _, b := range m {
			if b {
				n++
			}
		}
		if n > 0 {
			entries = append(entries, entry{j, n})
		}
	}

	rng := rand.New(rand.NewSource(imp.Seed))
	rng.Shuffle(len(entries), func(a, b int) { entries[a], entries[b] = entries[b], entries[a] })
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].count < entries[b].count })

	order := make([]int, len(entries))
	for i, e := range entries {
		order[i] = e.col
	}
	return order
}

// updateColumn заново обучает колонку j по остальным и пересчитывает ее пропуски.
// Возвращает наибольшее изменение и модель. При вырожденной системе колонка не меняется.
func (imp IterativeImputer) updateColumn(matrix [][]float64, missing [][]bool, j int) (float64, *linear_regression.RidgeModel) {
	features := func(i int) []float64 {
		row := make([]float64, 0, len(matrix)-1)
		for k, col := range matrix {
			if k != j {
				row = append(row, col[i])
			}
		}
		return row
	}

	var x [][]float64
	var y []float64
	for i, m := range missing[j] {
		if !m {
			x = append(x, features(i))
			y = append(y, matrix[j][i])
		}
	}

	model, err := linear_regression.FitRidge(x, y, imp.Alpha)
	if err != nil {
		return 0, nil
	}

	change := 0.0
	for i, m := range missing[j] {
		if !m {
			continue
		}
		next := model.Predict(features(i))
		change = math.Max(change, math.Abs(next-matrix[j][i]))
		matrix[j][i] = next
	}
	return change, model
}

func countObserved(col []float64) int {
	n := 0
	for _, v := range col {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// ColumnImputation - результат итеративного заполнения одной колонки
type ColumnImputation struct {
	Column string
	Filled int
	Result *ImputeResult
}

// FillWithIterativeImputer заполняет каждую колонку независимо, один fit-transform на колонку,
// по predictors (или по всем остальным числовым колонкам, кроме key, если predictors пуст).
// Заполненные значения округляются до ближайшего четного, колонки целочисленные.
func FillWithIterativeImputer(f *models.Frame, columns []string, predictors []string, key string, imp IterativeImputer) ([]ColumnImputation, error) {
	var out []ColumnImputation
	for _, name := range columns {
		col, err := f.MustColumn(name)
		if err != nil {
			return out, err
		}
		if !col.Numeric() {
			return out, &ImputationError{Column: name, Strategy: StrategyIterative, Reason: "column is not numeric"}
		}

		var inputs [][]float64
		for _, p := range predictorColumns(f, name, predictors, key) {
			inputs = append(inputs, numbersWithNaN(p))
		}

		result, err := imp.Impute(numbersWithNaN(col), inputs)
		if err != nil {
			var ie *ImputationError
			if errors.As(err, &ie) {
				ie.Column = name
			}
			return out, err
		}

		filled := 0
		for i, v := range col.Values {
			if !v.Null {
				continue
			}
			rounded := math.RoundToEven(result.Values[i])
			if col.Kind == models.KindInt {
				col.Values[i] = models.Int(int64(rounded))
			} else {
				col.Values[i] = models.Float(rounded)
			}
			filled++
		}
		out = append(out, ColumnImputation{Column: name, Filled: filled, Result: result})
	}
	return out, nil
}

func predictorColumns(f *models.Frame, target string, names []string, key string) []*models.Column {
	var out []*models.Column
	if len(names) > 0 {
		for _, n := range names {
			if c, ok := f.Column(n); ok && n != target && c.Numeric() {
				out = append(out, c)
			}
		}
		return out
	}
	for _, c := range f.Columns() {
		if c.Name != target && c.Name != key && c.Numeric() {
			out = append(out, c)
		}
	}
	return out
}

func numbersWithNaN(col *models.Column) []float64 {
	out := make([]float64, col.Len())
	for i, v := range col.Values {
		n, ok := v.Number()
		if !ok {
			n = math.NaN()
		}
		out[i] = n
	}
	return out
}
