package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// ETLLogger - структурированный логгер для всех этапов ETL
type ETLLogger struct {
	logger    *slog.Logger
	file      *os.File
	isVerbose bool
}

// NewETLLogger пишет JSON-логи в stdout и, если задан logFile, в этот файл
func NewETLLogger(verbose bool, logFile string) (*ETLLogger, error) {
	var out io.Writer = os.Stdout
	var file *os.File

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	l := NewETLLoggerWithWriter(out, verbose)
	l.file = file
	return l, nil
}

// NewETLLoggerWithWriter создает логгер с произвольным writer
func NewETLLoggerWithWriter(w io.Writer, verbose bool) *ETLLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &ETLLogger{
		logger:    slog.New(handler).With(slog.String("component", "hr_etl")),
		isVerbose: verbose,
	}
}

// Close закрывает файл лога, если он есть
func (l *ETLLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With возвращает логгер с дополнительными атрибутами
func (l *ETLLogger) With(args ...any) *ETLLogger {
	return &ETLLogger{
		logger:    l.logger.With(args...),
		isVerbose: l.isVerbose,
	}
}

func (l *ETLLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *ETLLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *ETLLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Debug пишется только в подробном режиме
func (l *ETLLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// LogStageStart логирует начало этапа
func (l *ETLLogger) LogStageStart(stage string) {
	l.Debug("stage started", slog.String("stage", stage))
}

// LogStageComplete логирует завершение этапа и размер фрейма
func (l *ETLLogger) LogStageComplete(stage string, rows int, duration time.Duration) {
	l.Info("stage completed",
		slog.String("stage", stage),
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
}
