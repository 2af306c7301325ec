package load

import (
	"fmt"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

// TableSpec задает целевую таблицу и колонки фрейма, которые в нее попадают
type TableSpec struct {
	Name    string
	Columns []string
}

// Имена целевых таблиц
const (
	TableEmployees          = "employees"
	TableEmploymentHistory  = "employment_history"
	TableSatisfactionScores = "satisfaction_scores"
	TableAttritionRisk      = "attrition_risk"
)

// DefaultTableSpecs возвращает нормализованную схему HR. Ключ добавляет Split.
func DefaultTableSpecs() []TableSpec {
	return []TableSpec{
		{TableEmployees, []string{
			"Age", "Gender", "MaritalStatus", "Education", "EducationField", "Department",
			"JobRole", "NumCompaniesWorked", "StockOptionLevel", "MonthlyIncome", "MonthlyRate",
		}},
		{TableEmploymentHistory, []string{
			"TotalWorkingYears", "YearsAtCompany", "YearsInCurrentRole", "YearsSinceLastPromotion",
			"YearsWithCurrManager", "BusinessTravel", "OverTime", "DistanceFromHome",
		}},
		{TableSatisfactionScores, []string{
			"JobSatisfaction", "EnvironmentSatisfaction", "RelationshipSatisfaction",
			"WorkLifeBalance", "JobInvolvement", "PerformanceRating",
		}},
		{TableAttritionRisk, []string{
			"Attrition", "RiskScore", "IncomeBand", "TenureGroup", "AgeGroup",
		}},
	}
}

// ValidateKey проверяет, что ключ есть в f, не пустой и уникальный
func ValidateKey(f *models.Frame, key string) error {
	col, ok := f.Column(key)
	if !ok {
		return fmt.Errorf("%w: column %s not in frame", ErrMissingKey, key)
	}

	seen := make(map[string]int, col.Len())
	for i, v := range col.Values {
		if v.Null {
			return fmt.Errorf("%w: %s is null at row %d", ErrMissingKey, key, i)
		}
		if first, dup := seen[v.Key()]; dup {
			return fmt.Errorf("%w: %s=%s at rows %d and %d", ErrDuplicateKey, key, v.Text(), first, i)
		}
		seen[v.Key()] = i
	}
	return nil
}

// Split проецирует f в таблицу на каждый TableSpec, первой идет колонка ключа.
// Каждая таблица получает все строки, поэтому набор ключей во всех таблицах одинаков.
func Split(f *models.Frame, key string, specs []TableSpec) ([]models.Table, error) {
	if err := ValidateKey(f, key); err != nil {
		return nil, err
	}

	tables := make([]models.Table, 0, len(specs))
	for _, spec := range specs {
		columns := []string{key}
		for _, c := range spec.Columns {
			if c == key {
				continue
			}
			if !f.Has(c) {
				return nil, fmt.Errorf("%w: %s needs %s", ErrMissingColumn, spec.Name, c)
			}
			columns = append(columns, c)
		}

		projection, err := f.Project(columns...)
		if err != nil {
			return nil, fmt.Errorf("failed to project %s: %w", spec.Name, err)
		}
		tables = append(tables, models.Table{Name: spec.Name, Key: key, Frame: projection})
	}
	return tables, nil
}
