package transform

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

const (
	IncomeLow    = "Low"
	IncomeMedium = "Medium"
	IncomeHigh   = "High"

	AgeUnder25 = "Under 25"
	Age25To45  = "25-45"
	AgeOver45  = "Over 45"

	Tenure0To2 = "0-2"
	Tenure3To5 = "3-5"
	Tenure6To9 = "6-9"
	Tenure10Up = "10+"
)

// IncomeThresholds - статистики дохода, зафиксированные при расчете IncomeBand
type IncomeThresholds struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Classify: ниже Mean-Std - Low, выше Mean+Std - High, иначе Medium.
// При Std == 0 значения, равные среднему, попадают в Medium.
func (t IncomeThresholds) Classify(v float64) string {
	switch {
	case v < t.Mean-t.Std:
		return IncomeLow
	case v > t.Mean+t.Std:
		return IncomeHigh
	default:
		return IncomeMedium
	}
}

// AgeGroup определяет возрастную группу: < 25, 25..45 включительно, старше 45
func AgeGroup(age float64) string {
	switch {
	case age < 25:
		return AgeUnder25
	case 25 <= age && age <= 45:
		return Age25To45
	default:
		return AgeOver45
	}
}

// TenureGroup определяет группу стажа в компании. Значения вне всех диапазонов,
// включая отрицательные, попадают в 10+.
func TenureGroup(years float64) string {
	switch {
	case 0 <= years && years <= 2:
		return Tenure0To2
	case 3 <= years && years <= 5:
		return Tenure3To5
	case 6 <= years && years <= 9:
		return Tenure6To9
	default:
		return Tenure10Up
	}
}

// CreateIncomeBand один раз считает среднее и выборочное стандартное отклонение source
// и относит каждую строку к группе. Пропуск дохода дает пропуск группы.
func CreateIncomeBand(f *models.Frame, source, target string) (IncomeThresholds, error) {
	col, err := f.MustColumn(source)
	if err != nil {
		return IncomeThresholds{}, err
	}
	if !col.Numeric() {
		return IncomeThresholds{}, fmt.Errorf("income band source %s is not numeric", source)
	}

	nums := presentNumbers(col)
	if len(nums) == 0 {
		return IncomeThresholds{}, fmt.Errorf("income band source %s has no present values", source)
	}
	t := IncomeThresholds{Mean: stat.Mean(nums, nil)}
	if len(nums) > 1 {
		t.Std = stat.StdDev(nums, nil)
	}

	return t, deriveText(f, col, target, t.Classify)
}

// CreateAgeGroup добавляет колонку AgeGroup по source
func CreateAgeGroup(f *models.Frame, source, target string) error {
	col, err := f.MustColumn(source)
	if err != nil {
		return err
	}
	return deriveText(f, col, target, AgeGroup)
}

// CreateTenureGroup добавляет колонку TenureGroup по source
func CreateTenureGroup(f *models.Frame, source, target string) error {
	col, err := f.MustColumn(source)
	if err != nil {
		return err
	}
	return deriveText(f, col, target, TenureGroup)
}

func deriveText(f *models.Frame, col *models.Column, target string, classify func(float64) string) error {
	if !col.Numeric() {
		return fmt.Errorf("column %s is not numeric", col.Name)
	}
	values := make([]models.Value, col.Len())
	for i, v := range col.Values {
		n, ok := v.Number()
		if !ok {
			values[i] = models.Null(models.KindString)
			continue
		}
		values[i] = models.String(classify(n))
	}
	return f.SetColumn(models.NewColumn(target, models.KindString, values))
}
