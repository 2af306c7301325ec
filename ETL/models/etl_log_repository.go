package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const runLogColumns = `
		id, start_time, COALESCE(end_time, start_time), status, COALESCE(failed_stage, ''),
		rows_extracted, rows_skipped, duplicates_removed, rows_loaded,
		COALESCE(error_message, ''), COALESCE(execution_time_seconds, 0)`

// SQLETLLogRepository реализация ETLLogRepository для MySQL и PostgreSQL
type SQLETLLogRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLETLLogRepository создает новый репозиторий; driver определяет вид плейсхолдеров
func NewSQLETLLogRepository(db *sql.DB, driver string) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db:     db,
		driver: driver,
	}
}

// rebind заменяет ? на $n для PostgreSQL
func (r *SQLETLLogRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// CreateETLLogTable создает таблицу логов ETL, если она не существует
func (r *SQLETLLogRepository) CreateETLLogTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		id VARCHAR(36) PRIMARY KEY,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		status VARCHAR(16) NOT NULL,
		failed_stage VARCHAR(64),
		rows_extracted INT DEFAULT 0,
		rows_skipped INT DEFAULT 0,
		duplicates_removed INT DEFAULT 0,
		rows_loaded INT DEFAULT 0,
		error_message TEXT,
		execution_time_seconds DOUBLE PRECISION
	)`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create etl_run_log: %w", err)
	}
	return nil
}

// CreateLogEntry создает запись о начале запуска
func (r *SQLETLLogRepository) CreateLogEntry(ctx context.Context, run *ETLRunLog) error {
	query := r.rebind(`INSERT INTO etl_run_log (id, start_time, status) VALUES (?, ?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, run.ID, run.StartTime, RunStatusInProgress); err != nil {
		return fmt.Errorf("failed to create run log entry: %w", err)
	}
	run.Status = RunStatusInProgress
	return nil
}

// UpdateLogEntrySuccess сохраняет счетчики успешного запуска
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(ctx context.Context, run *ETLRunLog) error {
	run.Status = RunStatusSuccess
	run.ExecutionTimeSeconds = run.EndTime.Sub(run.StartTime).Seconds()

	query := r.rebind(`
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		rows_extracted = ?,
		rows_skipped = ?,
		duplicates_removed = ?,
		rows_loaded = ?,
		execution_time_seconds = ?
	WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query,
		run.EndTime,
		run.Status,
		run.RowsExtracted,
		run.RowsSkipped,
		run.DuplicatesRemoved,
		run.RowsLoaded,
		run.ExecutionTimeSeconds,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run log entry %s: %w", run.ID, err)
	}
	return nil
}

// UpdateLogEntryFailure сохраняет этап и ошибку неудачного запуска
func (r *SQLETLLogRepository) UpdateLogEntryFailure(ctx context.Context, run *ETLRunLog) error {
	run.Status = RunStatusFailed
	run.ExecutionTimeSeconds = run.EndTime.Sub(run.StartTime).Seconds()

	query := r.rebind(`
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		failed_stage = ?,
		rows_extracted = ?,
		rows_skipped = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?`)

	_, err := r.db.ExecContext(ctx, query,
		run.EndTime,
		run.Status,
		run.FailedStage,
		run.RowsExtracted,
		run.RowsSkipped,
		run.ErrorMessage,
		run.ExecutionTimeSeconds,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run log entry %s: %w", run.ID, err)
	}
	return nil
}

func (r *SQLETLLogRepository) latestByStatus(ctx context.Context, status string) (*ETLRunLog, error) {
	query := r.rebind(`SELECT` + runLogColumns + `
	FROM etl_run_log
	WHERE status = ?
	ORDER BY start_time DESC
	LIMIT 1`)

	run, err := scanRun(r.db.QueryRowContext(ctx, query, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest %s run: %w", status, err)
	}
	return run, nil
}

// GetLastSuccessfulRun возвращает последний успешный запуск
func (r *SQLETLLogRepository) GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error) {
	return r.latestByStatus(ctx, RunStatusSuccess)
}

// GetETLRunStats возвращает запуски за последние days дней
func (r *SQLETLLogRepository) GetETLRunStats(ctx context.Context, days int) ([]ETLRunLog, error) {
	query := r.rebind(`SELECT` + runLogColumns + `
	FROM etl_run_log
	WHERE start_time >= ?
	ORDER BY start_time DESC`)

	since := time.Now().AddDate(0, 0, -days)
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	defer rows.Close()

	var runs []ETLRunLog
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run log entry: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run log entries: %w", err)
	}
	return runs, nil
}

// GetETLStateMonitor возвращает сводку по логу запусков
func (r *SQLETLLogRepository) GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error) {
	monitor := &ETLStateMonitor{}
	var err error

	if monitor.LastSuccessfulRun, err = r.latestByStatus(ctx, RunStatusSuccess); err != nil {
		return nil, err
	}
	if monitor.LastFailedRun, err = r.latestByStatus(ctx, RunStatusFailed); err != nil {
		return nil, err
	}
	if monitor.CurrentRun, err = r.latestByStatus(ctx, RunStatusInProgress); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	var loaded sql.NullInt64
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN status = 'success' THEN execution_time_seconds ELSE NULL END),
			SUM(CASE WHEN status = 'success' THEN rows_loaded ELSE 0 END)
		FROM etl_run_log`,
	).Scan(&monitor.TotalSuccessfulRuns, &monitor.TotalFailedRuns, &avg, &loaded)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate run log: %w", err)
	}
	monitor.AvgExecutionTimeSeconds = avg.Float64
	monitor.TotalRowsLoaded = int(loaded.Int64)

	return monitor, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ETLRunLog, error) {
	var run ETLRunLog
	err := row.Scan(
		&run.ID, &run.StartTime, &run.EndTime, &run.Status, &run.FailedStage,
		&run.RowsExtracted, &run.RowsSkipped, &run.DuplicatesRemoved, &run.RowsLoaded,
		&run.ErrorMessage, &run.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
