package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/hr_etl/ETL/config"
	"github.com/LilVoxy/hr_etl/ETL/extractors"
	"github.com/LilVoxy/hr_etl/ETL/load"
	"github.com/LilVoxy/hr_etl/ETL/metrics"
	"github.com/LilVoxy/hr_etl/ETL/models"
	hrtest "github.com/LilVoxy/hr_etl/ETL/testutil"
	"github.com/LilVoxy/hr_etl/ETL/transform"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

type rowsSource struct {
	header  []string
	rows    [][]string
	skipped int
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *rowsSource) Extract() (*extractors.ExtractResult, error) {
	if s.started != nil {
		close(s.started)
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	f, err := extractors.BuildFrame(s.header, s.rows)
	if err != nil {
		return nil, err
	}
	return &extractors.ExtractResult{Frame: f, SkippedRows: s.skipped, Source: "memory"}, nil
}

type memorySink struct {
	tables []models.Table
	err    error
}

func (s *memorySink) ReplaceTables(_ context.Context, tables []models.Table) error {
	if s.err != nil {
		return s.err
	}
	s.tables = tables
	return nil
}

type memoryRunLog struct {
	models.ETLLogRepository
	created  []models.ETLRunLog
	finished []models.ETLRunLog
	err      error
}

func (r *memoryRunLog) CreateLogEntry(_ context.Context, run *models.ETLRunLog) error {
	r.created = append(r.created, *run)
	return r.err
}

func (r *memoryRunLog) UpdateLogEntrySuccess(_ context.Context, run *models.ETLRunLog) error {
	r.finished = append(r.finished, *run)
	return r.err
}

func (r *memoryRunLog) UpdateLogEntryFailure(_ context.Context, run *models.ETLRunLog) error {
	r.finished = append(r.finished, *run)
	return r.err
}

type failingSnapshot struct{ calls int }

func (s *failingSnapshot) Write(*models.Frame) error {
	s.calls++
	return errors.New("read-only filesystem")
}

func sampleSource() *rowsSource {
	return &rowsSource{header: hrtest.HRColumns, rows: hrtest.AttritionSample(), skipped: 2}
}

func newPipeline(source extractors.Source, sink load.Sink, opts Options) *Pipeline {
	logger := utils.NewETLLoggerWithWriter(io.Discard, false)
	rules := config.DefaultRules()
	return New(
		source,
		transform.NewTransformer(rules, logger),
		load.NewLoadManager(sink, rules.KeyColumn, load.DefaultTableSpecs(), logger),
		rules.KeyColumn,
		logger,
		opts,
	)
}

func tableByName(t *testing.T, tables []models.Table, name string) models.Table {
	t.Helper()
	for _, tbl := range tables {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("table %s not loaded", name)
	return models.Table{}
}

func keys(t *testing.T, tbl models.Table) []int64 {
	col, ok := tbl.Frame.Column(tbl.Key)
	require.True(t, ok)
	out := make([]int64, 0, col.Len())
	for _, v := range col.Values {
		out = append(out, v.Int)
	}
	return out
}

func TestRunAttritionSample(t *testing.T) {
	sink := &memorySink{}
	runLog := &memoryRunLog{}
	m := metrics.New()
	p := newPipeline(sampleSource(), sink, Options{Metrics: m, RunLog: runLog})
	assert.Equal(t, StateIdle, p.State())

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, report.State)
	assert.Equal(t, StateCompleted, p.State())
	assert.Same(t, report, p.LastReport())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.RowsExtracted)
	assert.Equal(t, 2, report.RowsSkipped)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 4, report.RowsTransformed)
	assert.Equal(t, 4, report.RowsLoaded)
	assert.Equal(t, []string{load.TableEmployees, load.TableEmploymentHistory, load.TableSatisfactionScores, load.TableAttritionRisk}, report.Tables)

	require.Len(t, sink.tables, 4)
	for _, tbl := range sink.tables {
		assert.Equal(t, []int64{1, 2, 3, 4}, keys(t, tbl), tbl.Name)
	}

	employees := tableByName(t, sink.tables, load.TableEmployees)
	marital, _ := employees.Frame.Column("MaritalStatus")
	assert.Equal(t, "Married", marital.Values[1].Str)

	history := tableByName(t, sink.tables, load.TableEmploymentHistory)
	travel, _ := history.Frame.Column("BusinessTravel")
	assert.Equal(t, "Rarely", travel.Values[2].Str)

	risk := tableByName(t, sink.tables, load.TableAttritionRisk)
	score, _ := risk.Frame.Column(transform.RiskScoreColumn)
	assert.Zero(t, score.NullCount())

	require.Len(t, runLog.created, 1)
	require.Len(t, runLog.finished, 1)
	assert.Equal(t, report.RunID, runLog.finished[0].ID)
	assert.Equal(t, models.RunStatusSuccess, runLog.finished[0].Status)
	assert.Equal(t, 4, runLog.finished[0].RowsLoaded)
	assert.Equal(t, 1, runLog.finished[0].DuplicatesRemoved)

	expected := `
# HELP hr_etl_duplicates_removed Exact duplicate rows dropped in the last run.
# TYPE hr_etl_duplicates_removed gauge
hr_etl_duplicates_removed 1
# HELP hr_etl_rows Rows seen in the last run, by phase.
# TYPE hr_etl_rows gauge
hr_etl_rows{phase="extracted"} 5
hr_etl_rows{phase="loaded"} 4
hr_etl_rows{phase="transformed"} 4
# HELP hr_etl_runs_total Pipeline runs by final status.
# TYPE hr_etl_runs_total counter
hr_etl_runs_total{status="success"} 1
# HELP hr_etl_skipped_rows Malformed source rows skipped in the last run.
# TYPE hr_etl_skipped_rows gauge
hr_etl_skipped_rows 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected),
		"hr_etl_duplicates_removed", "hr_etl_rows", "hr_etl_runs_total", "hr_etl_skipped_rows"))
	// по серии на каждый выполненный этап: извлечение, 13 этапов трансформации, загрузка
	count, err := testutil.GatherAndCount(m.Registry, "hr_etl_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestRunFailsAtTypeCoercion(t *testing.T) {
	rows := hrtest.AttritionSample()
	bad := hrtest.HRRecord(map[string]string{"EmployeeNumber": "9", "MonthlyRate": "unknown"})
	source := &rowsSource{header: hrtest.HRColumns, rows: append(rows, bad)}
	sink := &memorySink{}
	runLog := &memoryRunLog{}
	m := metrics.New()
	p := newPipeline(source, sink, Options{Metrics: m, RunLog: runLog})

	report, err := p.Run(context.Background())
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, transform.StageTypeCoerce, se.Stage)
	var tce *transform.TypeConversionError
	require.ErrorAs(t, err, &tce)
	assert.Equal(t, "MonthlyRate", tce.Column)

	assert.Equal(t, StateFailed, report.State)
	assert.Equal(t, StateFailed, p.State())
	assert.Equal(t, transform.StageTypeCoerce, report.FailedStage)
	assert.Nil(t, sink.tables, "nothing is written after a failed stage")

	require.Len(t, runLog.finished, 1)
	assert.Equal(t, models.RunStatusFailed, runLog.finished[0].Status)
	assert.Equal(t, transform.StageTypeCoerce, runLog.finished[0].FailedStage)
	assert.Contains(t, runLog.finished[0].ErrorMessage, "MonthlyRate")

	expected := `
# HELP hr_etl_runs_total Pipeline runs by final status.
# TYPE hr_etl_runs_total counter
hr_etl_runs_total{status="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "hr_etl_runs_total"))
}

func TestRunFailureStages(t *testing.T) {
	noKey := []string{"Age", "Department"}
	noKeyRows := [][]string{{"35", "Sales"}, {"41", "Research & Development"}}

	tests := []struct {
		name    string
		source  *rowsSource
		sink    *memorySink
		stage   string
		wantErr error
	}{
		{
			name:    "unreadable source",
			source:  &rowsSource{err: io.ErrUnexpectedEOF},
			sink:    &memorySink{},
			stage:   StageExtract,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "source without join key",
			source:  &rowsSource{header: noKey, rows: noKeyRows},
			sink:    &memorySink{},
			stage:   StageExtract,
			wantErr: load.ErrMissingKey,
		},
		{
			name:    "sink write failure",
			source:  sampleSource(),
			sink:    &memorySink{err: io.ErrClosedPipe},
			stage:   StageSplitLoad,
			wantErr: io.ErrClosedPipe,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := newPipeline(tt.source, tt.sink, Options{}).Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.stage, FailedStage(err))
			assert.Equal(t, tt.stage, report.FailedStage)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRunSinkErrorKeepsTableAttribution(t *testing.T) {
	sinkErr := &load.TableWriteError{Table: load.TableAttritionRisk, Err: errors.New("lock wait timeout")}
	_, err := newPipeline(sampleSource(), &memorySink{err: sinkErr}, Options{}).Run(context.Background())

	var twe *load.TableWriteError
	require.ErrorAs(t, err, &twe)
	assert.Equal(t, load.TableAttritionRisk, twe.Table)
}

func TestRunLogFailuresDoNotFailRun(t *testing.T) {
	runLog := &memoryRunLog{err: errors.New("run log table missing")}
	snap := &failingSnapshot{}
	report, err := newPipeline(sampleSource(), &memorySink{}, Options{RunLog: runLog, Snapshot: snap}).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateCompleted, report.State)
	assert.Equal(t, 1, snap.calls)
	assert.Len(t, runLog.finished, 1)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(sampleSource(), &memorySink{}, Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StageExtract, FailedStage(err))
}

func TestRunRejectsOverlap(t *testing.T) {
	source := sampleSource()
	source.started = make(chan struct{})
	source.release = make(chan struct{})
	p := newPipeline(source, &memorySink{}, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background())
		done <- err
	}()

	<-source.started
	assert.Equal(t, StateRunning, p.State())
	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(source.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateCompleted, p.State())
}

func TestRunFromCSVFile(t *testing.T) {
	csvText := hrtest.CSV(hrtest.HRColumns, hrtest.AttritionSample())
	// строка с недостающими полями пропускается при чтении
	csvText += "6,Yes\n"
	path := filepath.Join(t.TempDir(), "hr.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvText), 0o600))

	logger := utils.NewETLLoggerWithWriter(io.Discard, false)
	sink := &memorySink{}
	p := newPipeline(extractors.NewExtractor(path, logger), sink, Options{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, report.RowsExtracted)
	assert.Equal(t, 1, report.RowsSkipped)
	assert.Equal(t, 4, report.RowsLoaded)
	assert.Len(t, sink.tables, 4)
}
