package load

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

func testLogger() *utils.ETLLogger {
	return utils.NewETLLoggerWithWriter(io.Discard, false)
}

func keyFrame(t *testing.T, keys ...models.Value) *models.Frame {
	t.Helper()
	names := make([]models.Value, len(keys))
	scores := make([]models.Value, len(keys))
	for i := range keys {
		names[i] = models.String("emp")
		scores[i] = models.Float(float64(i) + 0.5)
	}
	scores[0] = models.Null(models.KindFloat)

	f, err := models.FrameFromColumns(
		models.NewColumn("EmployeeNumber", models.KindInt, keys),
		models.NewColumn("Name", models.KindString, names),
		models.NewColumn("Score", models.KindFloat, scores),
	)
	require.NoError(t, err)
	return f
}

func keySet(t *testing.T, table models.Table) map[int64]bool {
	t.Helper()
	col, ok := table.Frame.Column(table.Key)
	require.True(t, ok)
	out := make(map[int64]bool, col.Len())
	for _, v := range col.Values {
		out[v.Int] = true
	}
	return out
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name string
		keys []models.Value
		want error
	}{
		{"unique", []models.Value{models.Int(1), models.Int(2)}, nil},
		{"null", []models.Value{models.Int(1), models.Null(models.KindInt)}, ErrMissingKey},
		{"duplicate", []models.Value{models.Int(7), models.Int(3), models.Int(7)}, ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(keyFrame(t, tt.keys...), "EmployeeNumber")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, ValidateKey(keyFrame(t, models.Int(1)), "Badge"), ErrMissingKey)
}

func TestSplitSharesKeySet(t *testing.T) {
	f := keyFrame(t, models.Int(10), models.Int(20), models.Int(30))
	specs := []TableSpec{
		{"names", []string{"Name"}},
		{"scores", []string{"EmployeeNumber", "Score"}},
	}

	tables, err := Split(f, "EmployeeNumber", specs)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, []string{"EmployeeNumber", "Name"}, tables[0].Frame.Names())
	assert.Equal(t, []string{"EmployeeNumber", "Score"}, tables[1].Frame.Names())

	want := map[int64]bool{10: true, 20: true, 30: true}
	for _, table := range tables {
		assert.Equal(t, "EmployeeNumber", table.Key)
		assert.Equal(t, want, keySet(t, table), table.Name)
	}

	// проекции - копии
	name, _ := tables[0].Frame.Column("Name")
	name.Values[0] = models.String("changed")
	orig, _ := f.Column("Name")
	assert.Equal(t, "emp", orig.Values[0].Str)
}

func TestSplitMissingColumn(t *testing.T) {
	f := keyFrame(t, models.Int(1))
	_, err := Split(f, "EmployeeNumber", []TableSpec{{"risk", []string{"RiskScore"}}})
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "risk")
}

func TestDefaultTableSpecs(t *testing.T) {
	specs := DefaultTableSpecs()
	var names []string
	seen := make(map[string]string)
	for _, s := range specs {
		names = append(names, s.Name)
		for _, c := range s.Columns {
			if other, dup := seen[c]; dup {
				t.Errorf("column %s in both %s and %s", c, other, s.Name)
			}
			seen[c] = s.Name
		}
	}
	assert.Equal(t, []string{TableEmployees, TableEmploymentHistory, TableSatisfactionScores, TableAttritionRisk}, names)
	assert.Equal(t, TableAttritionRisk, seen["RiskScore"])
	assert.Equal(t, TableEmploymentHistory, seen["OverTime"])
}
