package transform

import (
	"github.com/LilVoxy/hr_etl/ETL/models"
)

// RiskScoreColumn - производная колонка риска увольнения
const RiskScoreColumn = "RiskScore"

type riskPredicate struct {
	column string
	weight int64
	test   func(models.Value) models.Tri
}

func atMost(limit float64) func(models.Value) models.Tri {
	return func(v models.Value) models.Tri {
		return models.Compare(v, func(n float64) bool { return n <= limit })
	}
}

// riskPredicates, сумма весов равна MaxRiskScore
var riskPredicates = []riskPredicate{
	{"JobSatisfaction", 2, atMost(2)},
	{"OverTime", 2, func(v models.Value) models.Tri {
		return models.Compare(v, func(n float64) bool { return n == 1 })
	}},
	{IncomeBandColumn, 1, func(v models.Value) models.Tri { return models.Equals(v, IncomeLow) }},
	{"YearsAtCompany", 1, func(v models.Value) models.Tri {
		return models.Compare(v, func(n float64) bool { return n < 2 })
	}},
	{"WorkLifeBalance", 2, atMost(2)},
	{"EnvironmentSatisfaction", 1, atMost(2)},
	{"RelationshipSatisfaction", 2, atMost(2)},
}

// MaxRiskScore - оценка строки, удовлетворяющей всем условиям
func MaxRiskScore() int64 {
	var total int64
	for _, p := range riskPredicates {
		total += p.weight
	}
	return total
}

// CreateRiskScore добавляет взвешенную сумму условий риска. Если хотя бы одно условие
// нельзя вычислить (пропуск во входных данных), оценка строки тоже пропуск.
func CreateRiskScore(f *models.Frame) error {
	inputs := make([]*models.Column, len(riskPredicates))
	for i, p := range riskPredicates {
		col, err := f.MustColumn(p.column)
		if err != nil {
			return err
		}
		inputs[i] = col
	}

	values := make([]models.Value, f.Len())
	for row := range values {
		var score int64
		known := true
		for i, p := range riskPredicates {
			w, ok := p.test(inputs[i].Values[row]).Weight(p.weight)
			if !ok {
				known = false
				break
			}
			score += w
		}
		if known {
			values[row] = models.Int(score)
		} else {
			values[row] = models.Null(models.KindInt)
		}
	}

	return f.SetColumn(models.NewColumn(RiskScoreColumn, models.KindInt, values))
}
