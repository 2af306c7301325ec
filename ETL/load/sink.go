package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

const (
	stagingSuffix = "__staging"
	retiredSuffix = "__old"

	tableExistsSQL = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
)

// Sink полностью заменяет набор таблиц: либо все, либо ни одной.
type Sink interface {
	ReplaceTables(ctx context.Context, tables []models.Table) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLSink записывает таблицы в реляционную БД через database/sql
type SQLSink struct {
	db        *sql.DB
	dialect   Dialect
	batchSize int
	logger    *utils.ETLLogger
}

// NewSQLSink создает Sink, вставляющий не более batchSize строк за запрос
func NewSQLSink(db *sql.DB, dialect Dialect, batchSize int, logger *utils.ETLLogger) *SQLSink {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SQLSink{
		db:        db,
		dialect:   dialect,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ReplaceTables пересоздает все таблицы с переданным содержимым
func (s *SQLSink) ReplaceTables(ctx context.Context, tables []models.Table) error {
	if len(tables) == 0 {
		return nil
	}
	startTime := time.Now()

	var err error
	if s.dialect.TransactionalDDL() {
		err = s.replaceInTransaction(ctx, tables)
	} else {
		err = s.replaceBySwap(ctx, tables)
	}
	if err != nil {
		return err
	}

	s.logger.Info("tables replaced", "dialect", s.dialect.Name(), "tables", len(tables), "duration", time.Since(startTime))
	return nil
}

// replaceInTransaction выполняет все DROP, CREATE и INSERT в одной транзакции
func (s *SQLSink) replaceInTransaction(ctx context.Context, tables []models.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if err := s.writeTable(ctx, tx, t.Name, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit load transaction: %w", err)
	}
	return nil
}

// replaceBySwap заполняет staging-таблицы и подменяет ими рабочие одним RENAME TABLE.
// До переименования рабочие таблицы не меняются.
func (s *SQLSink) replaceBySwap(ctx context.Context, tables []models.Table) error {
	d := s.dialect
	staged := make([]string, 0, len(tables))
	// пустые рабочие таблицы, созданные этим запуском для RENAME
	created := make([]string, 0, len(tables))

	fail := func(err error) error {
		cleanup := context.WithoutCancel(ctx)
		for _, name := range staged {
			if _, dropErr := s.db.ExecContext(cleanup, dropTableSQL(d, name)); dropErr != nil {
				s.logger.Warn("failed to drop staging table", "table", name, "error", dropErr)
			}
		}
		for _, name := range created {
			if _, dropErr := s.db.ExecContext(cleanup, dropTableSQL(d, name)); dropErr != nil {
				s.logger.Warn("failed to drop placeholder table", "table", name, "error", dropErr)
			}
		}
		return err
	}

	for _, t := range tables {
		name := t.Name + stagingSuffix
		if _, err := s.db.ExecContext(ctx, dropTableSQL(d, name)); err != nil {
			return fail(&TableWriteError{Table: t.Name, Err: err})
		}
		if _, err := s.db.ExecContext(ctx, createTableSQL(d, name, t.Frame, t.Key)); err != nil {
			return fail(&TableWriteError{Table: t.Name, Err: err})
		}
		staged = append(staged, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to begin load transaction: %w", err))
	}
	for _, t := range tables {
		if err := s.insertRows(ctx, tx, t.Name+stagingSuffix, t); err != nil {
			tx.Rollback()
			return fail(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("failed to commit staged rows: %w", err))
	}

	retired := make([]string, len(tables))
	renames := make([]string, 0, 2*len(tables))
	for i, t := range tables {
		retired[i] = d.Quote(t.Name + retiredSuffix)
		// RENAME TABLE требует, чтобы рабочая таблица существовала
		var exists int
		if err := s.db.QueryRowContext(ctx, tableExistsSQL, t.Name).Scan(&exists); err != nil {
			return fail(&TableWriteError{Table: t.Name, Err: err})
		}
		if exists == 0 {
			create := fmt.Sprintf("CREATE TABLE %s LIKE %s", d.Quote(t.Name), d.Quote(t.Name+stagingSuffix))
			if _, err := s.db.ExecContext(ctx, create); err != nil {
				return fail(&TableWriteError{Table: t.Name, Err: err})
			}
			created = append(created, t.Name)
		}
		renames = append(renames,
			fmt.Sprintf("%s TO %s", d.Quote(t.Name), retired[i]),
			fmt.Sprintf("%s TO %s", d.Quote(t.Name+stagingSuffix), d.Quote(t.Name)),
		)
	}

	dropRetired := "DROP TABLE IF EXISTS " + strings.Join(retired, ", ")
	if _, err := s.db.ExecContext(ctx, dropRetired); err != nil {
		return fail(fmt.Errorf("failed to clear retired tables: %w", err))
	}
	if _, err := s.db.ExecContext(ctx, "RENAME TABLE "+strings.Join(renames, ", ")); err != nil {
		return fail(fmt.Errorf("failed to swap staging tables: %w", err))
	}
	if _, err := s.db.ExecContext(ctx, dropRetired); err != nil {
		s.logger.Warn("failed to drop retired tables", "error", err)
	}
	return nil
}

func (s *SQLSink) writeTable(ctx context.Context, ex execer, name string, t models.Table) error {
	if _, err := ex.ExecContext(ctx, dropTableSQL(s.dialect, name)); err != nil {
		return &TableWriteError{Table: t.Name, Err: err}
	}
	if _, err := ex.ExecContext(ctx, createTableSQL(s.dialect, name, t.Frame, t.Key)); err != nil {
		return &TableWriteError{Table: t.Name, Err: err}
	}
	return s.insertRows(ctx, ex, name, t)
}

func (s *SQLSink) insertRows(ctx context.Context, ex execer, name string, t models.Table) error {
	rows := t.Frame.Len()
	for start := 0; start < rows; start += s.batchSize {
		end := min(start+s.batchSize, rows)
		query, args := insertSQL(s.dialect, name, t.Frame, start, end)
		if _, err := ex.ExecContext(ctx, query, args...); err != nil {
			return &TableWriteError{Table: t.Name, Err: fmt.Errorf("rows %d-%d: %w", start, end-1, err)}
		}
		s.logger.Debug("batch inserted", "table", t.Name, "rows", end-start)
	}
	return nil
}
