// Package pipeline выполняет извлечение, этапы трансформации и загрузку
// в фиксированном порядке и фиксирует результат.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LilVoxy/hr_etl/ETL/extractors"
	"github.com/LilVoxy/hr_etl/ETL/load"
	"github.com/LilVoxy/hr_etl/ETL/metrics"
	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/transform"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

// Этапы до и после трансформации
const (
	StageExtract   = "load"
	StageSplitLoad = "split-and-load"
)

// Фазы, для которых в метрики пишется число строк
const (
	PhaseExtracted   = "extracted"
	PhaseTransformed = "transformed"
	PhaseLoaded      = "loaded"
)

// Состояние пайплайна: Idle -> Running -> Completed | Failed
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Snapshotter сохраняет обогащенный фрейм перед загрузкой
type Snapshotter interface {
	Write(f *models.Frame) error
}

// Options содержит необязательные зависимости пайплайна
type Options struct {
	Metrics  *metrics.Metrics
	RunLog   models.ETLLogRepository
	Snapshot Snapshotter
}

// RunReport - итоги одного запуска
type RunReport struct {
	RunID             string                     `json:"run_id"`
	State             State                      `json:"state"`
	FailedStage       string                     `json:"failed_stage,omitempty"`
	RowsExtracted     int                        `json:"rows_extracted"`
	RowsSkipped       int                        `json:"rows_skipped"`
	DuplicatesRemoved int                        `json:"duplicates_removed"`
	RowsTransformed   int                        `json:"rows_transformed"`
	RowsLoaded        int                        `json:"rows_loaded"`
	Tables            []string                   `json:"tables,omitempty"`
	Income            transform.IncomeThresholds `json:"income_thresholds"`
	StartTime         time.Time                  `json:"start_time"`
	Duration          time.Duration              `json:"duration_ns"`
}

// Pipeline хранит состояние запуска. Запуски не пересекаются, у каждого свой фрейм.
type Pipeline struct {
	source      extractors.Source
	transformer *transform.Transformer
	loader      *load.LoadManager
	key         string
	logger      *utils.ETLLogger
	opts        Options

	mu         sync.Mutex
	state      State
	lastReport *RunReport
}

// New создает пайплайн в состоянии Idle
func New(source extractors.Source, transformer *transform.Transformer, loader *load.LoadManager, key string, logger *utils.ETLLogger, opts Options) *Pipeline {
	return &Pipeline{
		source:      source,
		transformer: transformer,
		loader:      loader,
		key:         key,
		logger:      logger,
		opts:        opts,
		state:       StateIdle,
	}
}

// State возвращает текущее состояние
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastReport возвращает отчет последнего завершенного запуска или nil
func (p *Pipeline) LastReport() *RunReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastReport
}

// Run выполняет полный запуск. Ошибка любого этапа прерывает запуск и возвращается
// как *StageError; отчет возвращается в обоих случаях.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	p.mu.Lock()
	if p.state == StateRunning {
		p.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	p.state = StateRunning
	p.mu.Unlock()

	report := &RunReport{
		RunID:     uuid.NewString(),
		State:     StateRunning,
		StartTime: time.Now(),
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("pipeline run started")

	runLog := &models.ETLRunLog{ID: report.RunID, StartTime: report.StartTime, Status: models.RunStatusInProgress}
	if p.opts.RunLog != nil {
		if err := p.opts.RunLog.CreateLogEntry(ctx, runLog); err != nil {
			logger.Warn("failed to create run log entry", "error", err)
		}
	}

	err := p.execute(ctx, logger, report)
	report.Duration = time.Since(report.StartTime)
	p.finish(ctx, logger, report, runLog, err)
	return report, err
}

func (p *Pipeline) execute(ctx context.Context, logger *utils.ETLLogger, report *RunReport) error {
	var frame *models.Frame

	err := p.stage(ctx, logger, StageExtract, func() (int, error) {
		result, err := p.source.Extract()
		if err != nil {
			return 0, err
		}
		frame = result.Frame
		report.RowsExtracted = result.Frame.Len()
		report.RowsSkipped = result.SkippedRows
		return result.Frame.Len(), nil
	}, func() *models.Frame { return frame })
	if err != nil {
		return err
	}
	p.setRows(PhaseExtracted, report.RowsExtracted)
	if p.opts.Metrics != nil {
		p.opts.Metrics.SetSkippedRows(report.RowsSkipped)
	}

	for _, s := range p.transformer.Stages() {
		err := p.stage(ctx, logger, s.Name, func() (int, error) {
			n, err := s.Apply(frame)
			if s.Name == transform.StageDedupe {
				report.DuplicatesRemoved = n
			}
			return n, err
		}, func() *models.Frame { return frame })
		if err != nil {
			return err
		}
	}
	report.RowsTransformed = frame.Len()
	report.Income = p.transformer.Income
	p.setRows(PhaseTransformed, report.RowsTransformed)
	if p.opts.Metrics != nil {
		p.opts.Metrics.SetDuplicatesRemoved(report.DuplicatesRemoved)
	}

	if p.opts.Snapshot != nil {
		if err := p.opts.Snapshot.Write(frame); err != nil {
			logger.Warn("failed to write snapshot", "error", err)
		}
	}

	err = p.stage(ctx, logger, StageSplitLoad, func() (int, error) {
		result, err := p.loader.Load(ctx, frame)
		if err != nil {
			return 0, err
		}
		report.RowsLoaded = result.RowsLoaded
		for _, t := range result.Tables {
			report.Tables = append(report.Tables, t.Name)
		}
		return result.RowsLoaded, nil
	}, nil)
	if err != nil {
		return err
	}
	p.setRows(PhaseLoaded, report.RowsLoaded)
	return nil
}

// stage выполняет fn как именованный этап и проверяет, что ключ не потерян
func (p *Pipeline) stage(ctx context.Context, logger *utils.ETLLogger, name string, fn func() (int, error), frame func() *models.Frame) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}

	logger.LogStageStart(name)
	startTime := time.Now()
	n, err := fn()
	duration := time.Since(startTime)
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveStage(name, duration)
	}
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}

	if frame != nil {
		if f := frame(); f == nil || !f.Has(p.key) {
			return &StageError{Stage: name, Err: fmt.Errorf("%w: %s dropped after stage", load.ErrMissingKey, p.key)}
		}
	}

	logger.LogStageComplete(name, n, duration)
	return nil
}

func (p *Pipeline) setRows(phase string, n int) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.SetRows(phase, n)
	}
}

func (p *Pipeline) finish(ctx context.Context, logger *utils.ETLLogger, report *RunReport, runLog *models.ETLRunLog, err error) {
	runLog.EndTime = time.Now()
	runLog.RowsExtracted = report.RowsExtracted
	runLog.RowsSkipped = report.RowsSkipped
	runLog.DuplicatesRemoved = report.DuplicatesRemoved
	runLog.RowsLoaded = report.RowsLoaded
	runLog.ExecutionTimeSeconds = report.Duration.Seconds()

	if err != nil {
		report.State = StateFailed
		report.FailedStage = FailedStage(err)
		runLog.Status = models.RunStatusFailed
		runLog.FailedStage = report.FailedStage
		runLog.ErrorMessage = err.Error()
		logger.Error("pipeline run failed", "stage", report.FailedStage, "error", err, "duration", report.Duration)
	} else {
		report.State = StateCompleted
		runLog.Status = models.RunStatusSuccess
		logger.Info("pipeline run completed",
			"rows_extracted", report.RowsExtracted,
			"rows_skipped", report.RowsSkipped,
			"duplicates_removed", report.DuplicatesRemoved,
			"rows_loaded", report.RowsLoaded,
			"duration", report.Duration)
	}

	if p.opts.Metrics != nil {
		p.opts.Metrics.RunFinished(runLog.Status)
	}

	if p.opts.RunLog != nil {
		// результат пишем, даже если ctx отменен
		ctx = context.WithoutCancel(ctx)
		var logErr error
		if err != nil {
			logErr = p.opts.RunLog.UpdateLogEntryFailure(ctx, runLog)
		} else {
			logErr = p.opts.RunLog.UpdateLogEntrySuccess(ctx, runLog)
		}
		if logErr != nil {
			logger.Warn("failed to update run log entry", "error", logErr)
		}
	}

	p.mu.Lock()
	p.state = report.State
	p.lastReport = report
	p.mu.Unlock()
}
