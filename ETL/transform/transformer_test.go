package transform

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/hr_etl/ETL/config"
	"github.com/LilVoxy/hr_etl/ETL/extractors"
	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/testutil"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

func sampleFrame(t *testing.T) *models.Frame {
	t.Helper()
	f, err := extractors.BuildFrame(testutil.HRColumns, testutil.AttritionSample())
	require.NoError(t, err)
	return f
}

func newTestTransformer() *Transformer {
	return NewTransformer(config.DefaultRules(), utils.NewETLLoggerWithWriter(io.Discard, false))
}

func textAt(t *testing.T, f *models.Frame, column string, row int) string {
	t.Helper()
	col, ok := f.Column(column)
	require.True(t, ok, "column %s", column)
	return col.Values[row].Text()
}

func TestStagesOrder(t *testing.T) {
	var names []string
	for _, s := range newTestTransformer().Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StageBinaryNormalize, StageDedupe, StageDropColumns, StageStandardizeText,
		StageModeFill, StageConstantFill, StageMedianFill, StageIterativeFill,
		StageTypeCoerce, StageIncomeBand, StageAgeGroup, StageTenureGroup, StageRiskScore,
	}, names)
}

func TestTransformAttritionSample(t *testing.T) {
	f := sampleFrame(t)
	tr := newTestTransformer()

	require.NoError(t, tr.Transform(f))

	assert.Equal(t, 4, f.Len())
	for _, dropped := range []string{"Over18", "EmployeeCount", "StandardHours"} {
		assert.False(t, f.Has(dropped), dropped)
	}

	keys, _ := f.Column("EmployeeNumber")
	assert.Equal(t, []models.Value{models.Int(1), models.Int(2), models.Int(3), models.Int(4)}, keys.Values)

	assert.Equal(t, "Married", textAt(t, f, "MaritalStatus", 1))
	assert.Equal(t, "Rarely", textAt(t, f, "BusinessTravel", 2))
	assert.Equal(t, "Research & Development", textAt(t, f, "Department", 1))
	assert.Equal(t, "Unknown", textAt(t, f, "EducationField", 3))
	assert.Equal(t, "Research Scientist", textAt(t, f, "JobRole", 0))

	for _, name := range []string{"OverTime", "Attrition"} {
		col, _ := f.Column(name)
		for _, v := range col.Values {
			n, ok := v.Number()
			require.True(t, ok)
			assert.Contains(t, []float64{0, 1}, n)
		}
	}

	for _, name := range []string{"TrainingTimesLastYear", "YearsWithCurrManager", "Age", "JobSatisfaction"} {
		col, _ := f.Column(name)
		assert.Equal(t, models.KindInt, col.Kind, name)
		assert.Zero(t, col.NullCount(), name)
	}

	assert.Equal(t, []string{IncomeLow, IncomeMedium, IncomeMedium, IncomeHigh}, []string{
		textAt(t, f, IncomeBandColumn, 0), textAt(t, f, IncomeBandColumn, 1),
		textAt(t, f, IncomeBandColumn, 2), textAt(t, f, IncomeBandColumn, 3),
	})
	assert.Equal(t, 5000.0, tr.Income.Mean)

	assert.Equal(t, AgeUnder25, textAt(t, f, AgeGroupColumn, 1))
	assert.Equal(t, AgeOver45, textAt(t, f, AgeGroupColumn, 2))
	assert.Equal(t, Tenure0To2, textAt(t, f, TenureGroupColumn, 0))
	assert.Equal(t, Tenure10Up, textAt(t, f, TenureGroupColumn, 3))

	score, _ := f.Column(RiskScoreColumn)
	assert.Equal(t, models.Int(6), score.Values[0])
	for _, v := range score.Values {
		require.False(t, v.Null)
		assert.GreaterOrEqual(t, v.Int, int64(0))
		assert.LessOrEqual(t, v.Int, MaxRiskScore())
	}
}

func TestTransformStopsOnFirstFailure(t *testing.T) {
	f := sampleFrame(t)
	f.Drop("JobRole")

	err := newTestTransformer().Transform(f)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrColumnNotFound)
	assert.Contains(t, err.Error(), StageStandardizeText)
	assert.False(t, f.Has(RiskScoreColumn))
}
