package transform

import (
	"fmt"
	"time"

	"github.com/LilVoxy/hr_etl/ETL/config"
	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

// Имена этапов трансформации в порядке выполнения
const (
	StageBinaryNormalize = "binary-normalize"
	StageDedupe          = "dedupe"
	StageDropColumns     = "drop-columns"
	StageStandardizeText = "standardize-text"
	StageModeFill        = "mode-fill"
	StageConstantFill    = "constant-fill"
	StageMedianFill      = "median-fill"
	StageIterativeFill   = "iterative-fill"
	StageTypeCoerce      = "type-coerce"
	StageIncomeBand      = "derive-income-band"
	StageAgeGroup        = "derive-age-group"
	StageTenureGroup     = "derive-tenure-group"
	StageRiskScore       = "derive-risk-score"
)

// Производные колонки
const (
	IncomeBandColumn  = "IncomeBand"
	AgeGroupColumn    = "AgeGroup"
	TenureGroupColumn = "TenureGroup"
)

// Stage - один шаг трансформации. Apply изменяет фрейм на месте и возвращает
// счетчик этапа (удалено строк, заполнено ячеек, удалено колонок...).
type Stage struct {
	Name  string
	Apply func(f *models.Frame) (int, error)
}

// Transformer отвечает за фиксированную последовательность этапов очистки, заполнения,
// приведения типов и расчета признаков
type Transformer struct {
	rules  config.PipelineRules
	logger *utils.ETLLogger

	// Пороги последнего расчета IncomeBand
	Income IncomeThresholds
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(rules config.PipelineRules, logger *utils.ETLLogger) *Transformer {
	return &Transformer{
		rules:  rules,
		logger: logger,
	}
}

// Stages возвращает этапы трансформации в единственно допустимом порядке
func (t *Transformer) Stages() []Stage {
	r := t.rules
	return []Stage{
		{StageBinaryNormalize, func(f *models.Frame) (int, error) {
			unmapped, err := ConvertBinaryColumns(f, r.BinaryColumns, r.BinaryMap)
			if unmapped > 0 {
				t.logger.Warn("unmapped binary values set to null", "columns", r.BinaryColumns, "count", unmapped)
			}
			return unmapped, err
		}},
		{StageDedupe, func(f *models.Frame) (int, error) {
			removed, err := RemoveDuplicates(f)
			t.logger.Info("duplicates removed", "count", removed)
			return removed, err
		}},
		{StageDropColumns, func(f *models.Frame) (int, error) {
			dropped := DropColumns(f, r.DropColumns)
			t.logger.Debug("columns dropped", "columns", dropped)
			return len(dropped), nil
		}},
		{StageStandardizeText, func(f *models.Frame) (int, error) {
			return 0, StandardizeColumns(f, r.TitleColumns, r.Replacements)
		}},
		{StageModeFill, func(f *models.Frame) (int, error) {
			return FillWithMode(f, r.ModeColumns)
		}},
		{StageConstantFill, func(f *models.Frame) (int, error) {
			return FillWithValue(f, r.ConstantColumns, r.ConstantValue)
		}},
		{StageMedianFill, func(f *models.Frame) (int, error) {
			return FillWithMedian(f, r.MedianColumns)
		}},
		{StageIterativeFill, func(f *models.Frame) (int, error) {
			imp := IterativeImputer{
				MaxIter:   r.Iterative.MaxIter,
				Seed:      r.Iterative.Seed,
				Tolerance: r.Iterative.Tolerance,
				Alpha:     r.Iterative.Alpha,
			}
			results, err := FillWithIterativeImputer(f, r.IterativeColumns, r.Iterative.Predictors, r.KeyColumn, imp)
			filled := 0
			for _, res := range results {
				filled += res.Filled
				t.logger.Debug("iterative fill", "column", res.Column, "filled", res.Filled,
					"iterations", res.Result.Iterations, "converged", res.Result.Converged, "r2", res.Result.R2)
				if res.Filled > 0 && res.Result.R2 < r.Iterative.MinR2 {
					t.logger.Warn("weak imputation model", "column", res.Column, "r2", res.Result.R2, "min_r2", r.Iterative.MinR2)
				}
			}
			return filled, err
		}},
		{StageTypeCoerce, func(f *models.Frame) (int, error) {
			return 0, ConvertColumnTypes(f, r.ColumnTypes)
		}},
		{StageIncomeBand, func(f *models.Frame) (int, error) {
			thresholds, err := CreateIncomeBand(f, r.IncomeColumn, IncomeBandColumn)
			if err != nil {
				return 0, err
			}
			t.Income = thresholds
			t.logger.Debug("income band thresholds", "mean", thresholds.Mean, "std", thresholds.Std)
			return f.Len(), nil
		}},
		{StageAgeGroup, func(f *models.Frame) (int, error) {
			return f.Len(), CreateAgeGroup(f, r.AgeColumn, AgeGroupColumn)
		}},
		{StageTenureGroup, func(f *models.Frame) (int, error) {
			return f.Len(), CreateTenureGroup(f, r.TenureColumn, TenureGroupColumn)
		}},
		{StageRiskScore, func(f *models.Frame) (int, error) {
			return f.Len(), CreateRiskScore(f)
		}},
	}
}

// Transform выполняет все этапы над f по порядку
func (t *Transformer) Transform(f *models.Frame) error {
	startTime := time.Now()
	for _, stage := range t.Stages() {
		if _, err := stage.Apply(f); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
	}
	t.logger.Info("transform completed", "rows", f.Len(), "duration", time.Since(startTime))
	return nil
}
