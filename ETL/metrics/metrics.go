// Package metrics содержит метрики Prometheus для запусков ETL.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics объединяет коллекторы процесса. У каждого экземпляра свой реестр.
type Metrics struct {
	Registry *prometheus.Registry

	runs              *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	rows              *prometheus.GaugeVec
	duplicatesRemoved prometheus.Gauge
	skippedRows       prometheus.Gauge
}

// New регистрирует все коллекторы в новом реестре
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hr_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hr_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hr_etl",
			Name:      "rows",
			Help:      "Rows seen in the last run, by phase.",
		}, []string{"phase"}),
		duplicatesRemoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hr_etl",
			Name:      "duplicates_removed",
			Help:      "Exact duplicate rows dropped in the last run.",
		}),
		skippedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hr_etl",
			Name:      "skipped_rows",
			Help:      "Malformed source rows skipped in the last run.",
		}),
	}

	m.Registry.MustRegister(m.runs, m.stageDuration, m.rows, m.duplicatesRemoved, m.skippedRows)
	return m
}

// ObserveStage фиксирует длительность этапа
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetRows фиксирует число строк на фазе (extracted, transformed, loaded)
func (m *Metrics) SetRows(phase string, n int) {
	m.rows.WithLabelValues(phase).Set(float64(n))
}

func (m *Metrics) SetDuplicatesRemoved(n int) {
	m.duplicatesRemoved.Set(float64(n))
}

func (m *Metrics) SetSkippedRows(n int) {
	m.skippedRows.Set(float64(n))
}

// RunFinished учитывает запуск по статусу
func (m *Metrics) RunFinished(status string) {
	m.runs.WithLabelValues(status).Inc()
}
