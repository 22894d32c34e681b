package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"circadian/internal/config"
	"circadian/internal/logger"
	"circadian/internal/session"
	"circadian/internal/store"
)

// app wires config, logging and storage into the session service. It
// satisfies api.App.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	repo   store.Repository
	svc    *session.Service
}

func newApp(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	repo, err := store.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	log.Debug("store opened", zap.String("backend", cfg.StorageBackend))

	return &app{
		cfg:    cfg,
		logger: log,
		repo:   repo,
		svc:    session.New(repo, log, session.WithDefaultSleepGoal(cfg.DefaultSleepGoal)),
	}, nil
}

func (a *app) Logger() *zap.Logger       { return a.logger }
func (a *app) Session() *session.Service { return a.svc }
func (a *app) MaxRequestsPerMin() int    { return a.cfg.MaxRequestsPerMin }
func (a *app) TrustedProxies() []string  { return a.cfg.TrustedProxies }
func (a *app) Version() string           { return appVersion }

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
