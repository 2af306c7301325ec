package transform

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/LilVoxy/hr_etl/ETL/config"
	"github.com/LilVoxy/hr_etl/ETL/models"
)

// ConvertColumnTypes приводит колонки к объявленным типам. Отсутствующие колонки пропускаются.
// Дробные числа переводятся в целые отбрасыванием дробной части, текст - только если это
// целое число; пропуски остаются пропусками.
func ConvertColumnTypes(f *models.Frame, columnTypes map[string]string) error {
	names := make([]string, 0, len(columnTypes))
	for name := range columnTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := f.Column(name)
		if !ok {
			continue
		}

		target := models.KindFloat
		if columnTypes[name] == config.TypeInt {
			target = models.KindInt
		}

		values := make([]models.Value, col.Len())
		for i, v := range col.Values {
			converted, ok := convertValue(v, target)
			if !ok {
				return &TypeConversionError{Column: name, Row: i, Value: v.Text(), Target: target.String()}
			}
			values[i] = converted
		}
		if err := f.SetColumn(models.NewColumn(name, target, values)); err != nil {
			return err
		}
	}
	return nil
}

func convertValue(v models.Value, target models.Kind) (models.Value, bool) {
	if v.Null {
		return models.Null(target), true
	}
	if v.Kind == target {
		return v, true
	}

	if v.Kind == models.KindString && target == models.KindInt {
		parsed, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return models.Value{}, false
		}
		return models.Int(parsed), true
	}

	n, ok := v.Number()
	if !ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return models.Value{}, false
		}
		n = parsed
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return models.Value{}, false
	}

	if target == models.KindInt {
		// float64(math.MaxInt64) округляется до 2^63, это уже вне диапазона
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return models.Value{}, false
		}
		return models.Int(int64(math.Trunc(n))), true
	}
	return models.Float(n), true
}
