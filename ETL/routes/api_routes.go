package routes

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LilVoxy/hr_etl/ETL/metrics"
	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/pipeline"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

// Runner - пайплайн с точки зрения API статуса
type Runner interface {
	State() pipeline.State
	LastReport() *pipeline.RunReport
	Run(ctx context.Context) (*pipeline.RunReport, error)
}

// SetupRoutes настраивает маршруты лога запусков, статуса и метрик
func SetupRoutes(router *mux.Router, repo models.ETLLogRepository, runner Runner, m *metrics.Metrics, logger *utils.ETLLogger) {
	api := router.PathPrefix("/api/etl").Subrouter()

	// Лог запусков
	api.HandleFunc("/runs", GetRunsHandler(repo, logger)).Methods(http.MethodGet)
	api.HandleFunc("/state", GetStateHandler(repo, logger)).Methods(http.MethodGet)

	// Пайплайн текущего процесса
	api.HandleFunc("/status", GetStatusHandler(runner)).Methods(http.MethodGet)
	api.HandleFunc("/run", TriggerRunHandler(runner, logger)).Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
