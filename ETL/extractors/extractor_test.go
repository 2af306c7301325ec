package extractors

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

func quietLogger() *utils.ETLLogger {
	return utils.NewETLLoggerWithWriter(io.Discard, false)
}

func TestCSVExtractorSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"EmployeeNumber,Age,Department,MonthlyIncome",
		"1,34,Sales,5000.5",
		"2,41,Research,",
		"3,29,HR,4100,extra",
		"4,NA,Sales,3900",
		"5,\"bad\"quote,Sales,1",
		"6,50,HR,7000",
	}, "\n")

	result, err := ExtractFrom(NewCSVExtractor(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.SkippedRows)
	assert.Equal(t, 4, result.Frame.Len())
	assert.Equal(t, []string{"EmployeeNumber", "Age", "Department", "MonthlyIncome"}, result.Frame.Names())

	age, _ := result.Frame.Column("Age")
	assert.Equal(t, models.KindInt, age.Kind)
	assert.Equal(t, 1, age.NullCount())

	income, _ := result.Frame.Column("MonthlyIncome")
	assert.Equal(t, models.KindFloat, income.Kind)
	assert.True(t, income.Values[1].Null)

	dept, _ := result.Frame.Column("Department")
	assert.Equal(t, models.KindString, dept.Kind)
}

func TestExtractFromEmptySource(t *testing.T) {
	_, err := ExtractFrom(NewCSVExtractor(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestInferColumn(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want models.Kind
	}{
		{"integers with missing", []string{"1", "", "3"}, models.KindInt},
		{"mixed int and float", []string{"1", "2.5"}, models.KindFloat},
		{"text", []string{"1", "Yes"}, models.KindString},
		{"all missing", []string{"", "NaN"}, models.KindFloat},
		{"padded integers", []string{" 7", "8 "}, models.KindInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := InferColumn("c", tt.raw)
			assert.Equal(t, tt.want, col.Kind)
			assert.Equal(t, len(tt.raw), col.Len())
		})
	}
}

func TestExtractorCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfEmployeeNumber,OverTime\n1,Yes\n2,No\n"), 0o644))

	result, err := NewExtractor(path, quietLogger()).Extract()
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.True(t, result.Frame.Has("EmployeeNumber"))
	assert.Equal(t, 2, result.Frame.Len())
}

func TestExtractorRejectsUnknownExtension(t *testing.T) {
	_, err := NewExtractor("hr.parquet", quietLogger()).Extract()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestXLSXExtractor(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)

	rows := [][]any{
		{"EmployeeNumber", "Age", "JobRole"},
		{1, 30, "Sales Executive"},
		{2, 45},
		{3, 28, "Manager", "overflow"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	result, err := ExtractFrom(NewXLSXExtractor(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SkippedRows)
	assert.Equal(t, 2, result.Frame.Len())
	role, _ := result.Frame.Column("JobRole")
	assert.True(t, role.Values[1].Null)
	age, _ := result.Frame.Column("Age")
	assert.Equal(t, models.KindInt, age.Kind)
}
