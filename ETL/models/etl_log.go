package models

import (
	"context"
	"time"
)

// Статусы запусков в etl_run_log
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog - запись о запуске ETL-процесса
type ETLRunLog struct {
	ID                   string    `json:"id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"`
	FailedStage          string    `json:"failed_stage,omitempty"`
	RowsExtracted        int       `json:"rows_extracted"`
	RowsSkipped          int       `json:"rows_skipped"`
	DuplicatesRemoved    int       `json:"duplicates_removed"`
	RowsLoaded           int       `json:"rows_loaded"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// ETLLogRepository интерфейс для работы с логами ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает etl_run_log, если она не существует
	CreateETLLogTable(ctx context.Context) error

	// CreateLogEntry создает запись о начале запуска run
	CreateLogEntry(ctx context.Context, run *ETLRunLog) error

	// UpdateLogEntrySuccess отмечает запуск успешным и сохраняет счетчики
	UpdateLogEntrySuccess(ctx context.Context, run *ETLRunLog) error

	// UpdateLogEntryFailure отмечает запуск неудачным с этапом и ошибкой
	UpdateLogEntryFailure(ctx context.Context, run *ETLRunLog) error

	// GetLastSuccessfulRun возвращает nil, nil, если успешных запусков еще не было
	GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error)

	// GetETLRunStats возвращает запуски за последние days дней, новые первыми
	GetETLRunStats(ctx context.Context, days int) ([]ETLRunLog, error)

	// GetETLStateMonitor возвращает сводку по логу запусков
	GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error)
}

// ETLStateMonitor - сводное состояние ETL по всем запускам
type ETLStateMonitor struct {
	LastSuccessfulRun       *ETLRunLog `json:"last_successful_run"`
	LastFailedRun           *ETLRunLog `json:"last_failed_run,omitempty"`
	CurrentRun              *ETLRunLog `json:"current_run,omitempty"`
	TotalSuccessfulRuns     int        `json:"total_successful_runs"`
	TotalFailedRuns         int        `json:"total_failed_runs"`
	AvgExecutionTimeSeconds float64    `json:"avg_execution_time_seconds"`
	TotalRowsLoaded         int        `json:"total_rows_loaded"`
}
