package extractors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

var (
	ErrEmptySource       = errors.New("source has no header row")
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// ExtractResult - исходный фрейм и число строк, которые не удалось прочитать
type ExtractResult struct {
	Frame       *models.Frame
	SkippedRows int
	Source      string
}

// Source поставляет исходный фрейм для запуска
type Source interface {
	Extract() (*ExtractResult, error)
}

// recordReader читает заголовок и строки, пропуская некорректные
type recordReader interface {
	ReadRecords(r io.Reader) (header []string, rows [][]string, skipped int, err error)
}

// Extractor читает табличный файл, выбирая формат по расширению
type Extractor struct {
	path   string
	logger *utils.ETLLogger
	csv    *CSVExtractor
	xlsx   *XLSXExtractor
}

// NewExtractor создает новый экземпляр Extractor для path (.csv или .xlsx)
func NewExtractor(path string, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		path:   path,
		logger: logger,
		csv:    NewCSVExtractor(),
		xlsx:   NewXLSXExtractor(),
	}
}

// Extract читает исходный файл в типизированный фрейм
func (e *Extractor) Extract() (*ExtractResult, error) {
	startTime := time.Now()
	e.logger.Info("extract started", "source", e.path)

	reader, err := e.readerFor(e.path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(e.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", e.path, err)
	}
	defer f.Close()

	result, err := ExtractFrom(reader, f)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", e.path, err)
	}
	result.Source = e.path

	if result.SkippedRows > 0 {
		e.logger.Warn("skipped malformed rows", "source", e.path, "skipped_rows", result.SkippedRows)
	}
	e.logger.Info("extract completed",
		"rows", result.Frame.Len(),
		"columns", result.Frame.Width(),
		"duration", time.Since(startTime))

	return result, nil
}

func (e *Extractor) readerFor(path string) (recordReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return e.csv, nil
	case ".xlsx":
		return e.xlsx, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ExtractFrom читает записи через reader и строит типизированный фрейм
func ExtractFrom(reader recordReader, r io.Reader) (*ExtractResult, error) {
	header, rows, skipped, err := reader.ReadRecords(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, ErrEmptySource
	}

	frame, err := BuildFrame(header, rows)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Frame: frame, SkippedRows: skipped}, nil
}
