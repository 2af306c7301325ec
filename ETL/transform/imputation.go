package transform

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

const (
	StrategyMode      = "mode"
	StrategyConstant  = "constant"
	StrategyMedian    = "median"
	StrategyIterative = "iterative"
)

// FillWithMode заменяет пропуски самым частым значением. При равной частоте берется
// наименьшее (по числу или лексикографически). Возвращает число заполненных ячеек.
func FillWithMode(f *models.Frame, columns []string) (int, error) {
	filled := 0
	for _, name := range columns {
		col, err := f.MustColumn(name)
		if err != nil {
			return filled, err
		}
		mode, ok := Mode(col)
		if !ok {
			return filled, &ImputationError{Column: name, Strategy: StrategyMode, Reason: "column has no present values"}
		}
		filled += fillNulls(col, mode)
	}
	return filled, nil
}

// Mode возвращает самое частое значение col
func Mode(col *models.Column) (models.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]models.Value)
	for _, v := range col.Values {
		if v.Null {
			continue
		}
		k := v.Key()
		if _, ok := first[k]; !ok {
			first[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return models.Value{}, false
	}

	var best models.Value
	bestCount := 0
	for k, n := range counts {
		v := first[k]
		if n > bestCount || (n == bestCount && v.Less(best)) {
			best, bestCount = v, n
		}
	}
	return best, true
}

// FillWithValue заменяет пропуски заданным значением. Текстовые колонки берут его как есть,
// числовые - если оно разбирается как число. Колонка без значений становится текстовой.
func FillWithValue(f *models.Frame, columns []string, value string) (int, error) {
	filled := 0
	for _, name := range columns {
		col, err := f.MustColumn(name)
		if err != nil {
			return filled, err
		}

		if col.Kind == models.KindString || col.NullCount() == col.Len() {
			if col, err = textColumn(f, name); err != nil {
				return filled, err
			}
			filled += fillNulls(col, models.String(value))
			continue
		}

		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return filled, &ImputationError{
				Column:   name,
				Strategy: StrategyConstant,
				Reason:   "constant " + strconv.Quote(value) + " is not numeric",
			}
		}
		filled += fillNumeric(f, col, n)
	}
	return filled, nil
}

// FillWithMedian заменяет пропуски в числовых колонках медианой
func FillWithMedian(f *models.Frame, columns []string) (int, error) {
	filled := 0
	for _, name := range columns {
		col, err := f.MustColumn(name)
		if err != nil {
			return filled, err
		}
		if !col.Numeric() {
			return filled, &ImputationError{Column: name, Strategy: StrategyMedian, Reason: "column is not numeric"}
		}
		median, ok := Median(col)
		if !ok {
			return filled, &ImputationError{Column: name, Strategy: StrategyMedian, Reason: "column has no present values"}
		}
		filled += fillNumeric(f, col, median)
	}
	return filled, nil
}

// Median возвращает медиану; при четном числе значений - среднее двух средних
func Median(col *models.Column) (float64, bool) {
	nums := presentNumbers(col)
	if len(nums) == 0 {
		return 0, false
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return nums[mid], true
	}
	return (nums[mid-1] + nums[mid]) / 2, true
}

func presentNumbers(col *models.Column) []float64 {
	nums := make([]float64, 0, col.Len())
	for _, v := range col.Values {
		if n, ok := v.Number(); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

func fillNulls(col *models.Column, v models.Value) int {
	filled := 0
	for i := range col.Values {
		if col.Values[i].Null {
			col.Values[i] = v
			filled++
		}
	}
	return filled
}

// fillNumeric заполняет пропуски числом n; при дробном n целая колонка становится float
func fillNumeric(f *models.Frame, col *models.Column, n float64) int {
	if col.Kind == models.KindInt && n == math.Trunc(n) {
		return fillNulls(col, models.Int(int64(n)))
	}
	if col.Kind == models.KindInt {
		col = promoteToFloat(f, col)
	}
	return fillNulls(col, models.Float(n))
}

func promoteToFloat(f *models.Frame, col *models.Column) *models.Column {
	values := make([]models.Value, col.Len())
	for i, v := range col.Values {
		if v.Null {
			values[i] = models.Null(models.KindFloat)
			continue
		}
		values[i] = models.Float(float64(v.Int))
	}
	promoted := models.NewColumn(col.Name, models.KindFloat, values)
	// то же имя и длина, ошибки быть не может
	_ = f.SetColumn(promoted)
	return promoted
}
