package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/italsem/fleetd/internal/config"
	"github.com/italsem/fleetd/internal/db"
	"github.com/italsem/fleetd/internal/fleet/service"
	"github.com/italsem/fleetd/internal/fleet/store/sqlite"
	"github.com/italsem/fleetd/internal/httpapi"
	"github.com/italsem/fleetd/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatal("seed dev data", zap.Error(err))
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	eventStore := sqlite.NewRefuelEventStore(conn, writer)
	vehicleStore := sqlite.NewVehicleStore(conn, writer)
	deadlineStore := sqlite.NewDeadlineStore(conn, writer)

	// Services
	refuelSvc := service.NewRefuelService(eventStore, vehicleStore, logger)
	vehicleSvc := service.NewVehicleService(vehicleStore, eventStore, deadlineStore, logger)
	deadlineSvc := service.NewDeadlineService(deadlineStore, vehicleStore, logger)
	reportSvc := service.NewReportService(eventStore, vehicleStore, deadlineStore, logger)

	scanner := service.NewDeadlineScanner(reportSvc, service.ScannerConfig{
		WindowDays:    cfg.AlertWindowDays,
		IntervalHours: cfg.AlertIntervalHours,
	}, logger)
	scanner.Start(ctx)
	defer scanner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:          logger,
		Addr:            cfg.HTTPAddr,
		RefuelService:   refuelSvc,
		VehicleService:  vehicleSvc,
		DeadlineService: deadlineSvc,
		ReportService:   reportSvc,
		Metrics:         metrics.New(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
