package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"

	"github.com/LilVoxy/hr_etl/ETL/config"
	"github.com/LilVoxy/hr_etl/ETL/extractors"
	"github.com/LilVoxy/hr_etl/ETL/load"
	"github.com/LilVoxy/hr_etl/ETL/metrics"
	"github.com/LilVoxy/hr_etl/ETL/models"
	"github.com/LilVoxy/hr_etl/ETL/pipeline"
	"github.com/LilVoxy/hr_etl/ETL/routes"
	"github.com/LilVoxy/hr_etl/ETL/snapshot"
	"github.com/LilVoxy/hr_etl/ETL/transform"
	"github.com/LilVoxy/hr_etl/ETL/utils"
)

type ETLRunner struct {
	config     *config.ETLConfig
	db         *sql.DB
	logger     *utils.ETLLogger
	metrics    *metrics.Metrics
	etlLogRepo models.ETLLogRepository
	pipeline   *pipeline.Pipeline
}

// NewETLRunner загружает конфигурацию, подключается к БД и собирает пайплайн
func NewETLRunner(ctx context.Context, sourceOverride string) (*ETLRunner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sourceOverride != "" {
		cfg.SourcePath = sourceOverride
	}

	logger, err := utils.NewETLLogger(cfg.EnableDetailedLogging, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	logger.Info("initializing ETL runner", "source", cfg.SourcePath, "driver", cfg.Driver, "host", cfg.Host)

	db, err := config.ConnectDatabase(ctx, cfg.DatabaseConfig)
	if err != nil {
		logger.Close()
		return nil, err
	}

	etlLogRepo := models.NewSQLETLLogRepository(db, cfg.Driver)
	if err := etlLogRepo.CreateETLLogTable(ctx); err != nil {
		db.Close()
		logger.Close()
		return nil, fmt.Errorf("failed to create run log table: %w", err)
	}

	dialect, err := load.DialectFor(cfg.Driver)
	if err != nil {
		db.Close()
		logger.Close()
		return nil, err
	}

	m := metrics.New()
	opts := pipeline.Options{Metrics: m, RunLog: etlLogRepo}
	if cfg.SnapshotPath != "" {
		opts.Snapshot = snapshot.NewWriter(cfg.SnapshotPath)
	}

	sink := load.NewSQLSink(db, dialect, cfg.BatchSize, logger)
	p := pipeline.New(
		extractors.NewExtractor(cfg.SourcePath, logger),
		transform.NewTransformer(cfg.Rules, logger),
		load.NewLoadManager(sink, cfg.Rules.KeyColumn, load.DefaultTableSpecs(), logger),
		cfg.Rules.KeyColumn,
		logger,
		opts,
	)

	return &ETLRunner{
		config:     cfg,
		db:         db,
		logger:     logger,
		metrics:    m,
		etlLogRepo: etlLogRepo,
		pipeline:   p,
	}, nil
}

// Close закрывает подключение к БД и файл лога
func (r *ETLRunner) Close() {
	r.logger.Info("shutting down ETL runner")
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
	r.logger.Close()
}

// ExecuteETL выполняет один запуск ETL-процесса
func (r *ETLRunner) ExecuteETL(ctx context.Context) error {
	report, err := r.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("ETL run finished", "run_id", report.RunID, "rows_loaded", report.RowsLoaded, "duration", report.Duration)
	return nil
}

// StartScheduler запускает ETL каждые RunInterval, пока ctx не отменен
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("starting ETL scheduler", "interval", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("scheduled ETL run")
		if err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("scheduled ETL run failed", "stage", pipeline.FailedStage(err), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule ETL job: %w", err)
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()

	r.logger.Info("ETL scheduler stopped")
	return nil
}

// Serve поднимает API статуса и метрики, пока работает планировщик
func (r *ETLRunner) Serve(ctx context.Context) error {
	router := mux.NewRouter()
	routes.SetupRoutes(router, r.etlLogRepo, r.pipeline, r.metrics, r.logger)

	server := &http.Server{
		Addr:              r.config.StatusAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("status API listening", "addr", r.config.StatusAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	schedErr := make(chan error, 1)
	go func() { schedErr <- r.StartScheduler(ctx) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("status API failed: %w", err)
	case err := <-schedErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	modePtr := flag.String("mode", "once", "run mode: once, scheduled or serve")
	sourcePtr := flag.String("source", "", "source file, overrides SOURCE_PATH")
	flag.Parse()

	log.Println("starting ETL runner in mode:", *modePtr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := NewETLRunner(ctx, *sourcePtr)
	if err != nil {
		log.Fatalf("failed to create ETL runner: %v", err)
	}

	switch *modePtr {
	case "once":
		err = runner.ExecuteETL(ctx)
	case "scheduled":
		err = runner.StartScheduler(ctx)
	case "serve":
		err = runner.Serve(ctx)
	default:
		runner.Close()
		log.Fatalf("unknown mode %q, available modes: once, scheduled, serve", *modePtr)
	}

	runner.Close()
	if err != nil {
		log.Fatalf("ETL runner failed: %v", err)
	}
	log.Println("ETL runner finished")
}
