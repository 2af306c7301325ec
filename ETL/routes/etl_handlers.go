package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/pipeline"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 365
)

// RunsResponse - список записей лога запусков
type RunsResponse struct {
	Days int                `json:"days"`
	Runs []models.ETLRunLog `json:"runs"`
}

// StatusResponse описывает пайплайн текущего процесса
type StatusResponse struct {
	State      pipeline.State      `json:"state"`
	LastReport *pipeline.RunReport `json:"last_report,omitempty"`
}

// GetRunsHandler возвращает запуски за последние ?days дней (по умолчанию 7)
func GetRunsHandler(repo models.ETLLogRepository, logger *utils.ETLLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := defaultStatsDays
		if s := r.URL.Query().Get("days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > maxStatsDays {
				http.Error(w, "days must be an integer between 1 and 365", http.StatusBadRequest)
				return
			}
			days = n
		}

		runs, err := repo.GetETLRunStats(r.Context(), days)
		if err != nil {
			logger.Error("failed to read run stats", "error", err)
			http.Error(w, "failed to read run log", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []models.ETLRunLog{}
		}
		writeJSON(w, http.StatusOK, RunsResponse{Days: days, Runs: runs})
	}
}

// GetStateHandler возвращает сводку по логу запусков
func GetStateHandler(repo models.ETLLogRepository, logger *utils.ETLLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := repo.GetETLStateMonitor(r.Context())
		if err != nil {
			logger.Error("failed to read run state", "error", err)
			http.Error(w, "failed to read run log", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// GetStatusHandler возвращает состояние пайплайна и последний отчет
func GetStatusHandler(runner Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{State: runner.State(), LastReport: runner.LastReport()})
	}
}

// TriggerRunHandler запускает ETL в фоне. 409, если запуск уже идет.
func TriggerRunHandler(runner Runner, logger *utils.ETLLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if runner.State() == pipeline.StateRunning {
			http.Error(w, pipeline.ErrAlreadyRunning.Error(), http.StatusConflict)
			return
		}

		go func() {
			// запуск живет дольше запроса
			_, err := runner.Run(context.WithoutCancel(r.Context()))
			switch {
			case errors.Is(err, pipeline.ErrAlreadyRunning):
				logger.Warn("triggered run skipped", "reason", err)
			case err != nil:
				logger.Error("triggered run failed", "stage", pipeline.FailedStage(err), "error", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
