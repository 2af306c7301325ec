package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

// LoadManager разбивает обогащенный фрейм по целевой схеме и передает его в Sink
type LoadManager struct {
	sink   Sink
	key    string
	specs  []TableSpec
	logger *utils.ETLLogger
}

// LoadResult описывает завершенную загрузку
type LoadResult struct {
	Tables     []models.Table
	RowsLoaded int
}

// NewLoadManager создает новый экземпляр LoadManager. При specs == nil используется DefaultTableSpecs.
func NewLoadManager(sink Sink, key string, specs []TableSpec, logger *utils.ETLLogger) *LoadManager {
	if specs == nil {
		specs = DefaultTableSpecs()
	}
	return &LoadManager{
		sink:   sink,
		key:    key,
		specs:  specs,
		logger: logger,
	}
}

// Load проверяет ключ, разбивает f и заменяет все целевые таблицы
func (m *LoadManager) Load(ctx context.Context, f *models.Frame) (*LoadResult, error) {
	startTime := time.Now()
	m.logger.Info("load started", "rows", f.Len(), "tables", len(m.specs))

	tables, err := Split(f, m.key, m.specs)
	if err != nil {
		return nil, fmt.Errorf("failed to split frame: %w", err)
	}

	if err := m.sink.ReplaceTables(ctx, tables); err != nil {
		m.logger.Error("load failed", "error", err)
		return nil, err
	}

	for _, t := range tables {
		m.logger.Info("table loaded", "table", t.Name, "rows", t.Frame.Len(), "columns", t.Frame.Width())
	}
	m.logger.LogStageComplete("load", f.Len(), time.Since(startTime))

	return &LoadResult{Tables: tables, RowsLoaded: f.Len()}, nil
}
