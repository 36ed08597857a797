package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evalex7/e-plan/internal/config"
	"github.com/evalex7/e-plan/internal/db"
	"github.com/evalex7/e-plan/internal/logger"
	"github.com/evalex7/e-plan/internal/repository"
	"github.com/evalex7/e-plan/internal/schedule"
	"github.com/evalex7/e-plan/internal/service"
	"github.com/evalex7/e-plan/internal/storage"
)

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *service.Engine
	close  func()
}

// openApp loads the configuration, opens the store and the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Environment)

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	repo := repository.New(store, log)
	engine := service.NewEngine(repo, service.Options{
		Schedule: schedule.Options{
			HoursPerDepartment: cfg.Schedule.HoursPerDepartment,
			DueWindowDays:      cfg.Schedule.DueWindowDays,
		},
		HistoryLimit: cfg.Schedule.HistoryLimit,
	}, log)
	if err := engine.Open(ctx); err != nil {
		closeStore()
		return nil, fmt.Errorf("open engine: %w", err)
	}

	return &app{cfg: cfg, log: log, engine: engine, close: closeStore}, nil
}

func openStore(cfg *config.Config, log zerolog.Logger) (storage.Store, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return storage.NewMemoryStore(), func() {}, nil
	}

	database, err := db.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closeStore := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return storage.NewGormStore(database), closeStore, nil
}
