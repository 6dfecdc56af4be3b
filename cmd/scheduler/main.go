package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/medagenda/agenda/internal/app"
	"github.com/medagenda/agenda/internal/config"
	"github.com/medagenda/agenda/internal/repository"
	"github.com/medagenda/agenda/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	appointmentRepo := repository.NewAppointmentRepository(pool, logger)
	seriesRepo := repository.NewSeriesRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	engine := app.NewEngine(
		service.NewSeriesService(seriesRepo, appointmentRepo, activityRepo, cfg.HorizonMonths, cfg.HardLimit, logger),
		service.NewCancellationService(seriesRepo, appointmentRepo, activityRepo, logger),
		service.NewRescheduleService(appointmentRepo, activityRepo, cfg.AllowSwap, logger),
	)

	logger.Info("Scheduling engine ready",
		zap.String("environment", cfg.Environment),
		zap.Int("horizon_months", cfg.HorizonMonths),
		zap.Int("hard_limit", cfg.HardLimit),
		zap.Bool("allow_swap", cfg.AllowSwap),
	)

	engine.Run(ctx, logger)
}
