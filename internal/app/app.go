// Package app opens every process-wide handle from configuration and wires the
// services over them. Both binaries start here.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hotel-backoffice/internal/authz"
	"hotel-backoffice/internal/core/auth"
	"hotel-backoffice/internal/core/config"
	"hotel-backoffice/internal/core/database"
	"hotel-backoffice/internal/core/events"
	"hotel-backoffice/internal/core/objectstore"
	"hotel-backoffice/internal/core/redisx"
	"hotel-backoffice/internal/repo"
	"hotel-backoffice/internal/service"
	"hotel-backoffice/internal/transport/http/router"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Redis    *redisx.Client // nil when Redis is disabled
	Objects  objectstore.Store
	Events   events.Publisher
	Gate     *authz.Gate
	Services *service.Services

	closers []func()
}

// Build opens the database, Redis, object store and event bus, in that order. On
// failure everything already opened is closed again.
func Build(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: l}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.DB, err = database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             l,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := a.DB
	a.closers = append(a.closers, func() { _ = database.Close(db) })
	if cfg.DB.AutoMigrate {
		if err = repo.Migrate(a.DB); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		l.Info("automigrate done")
	}

	a.Redis, err = redisx.Open(ctx, cfg.Redis, l)
	if err != nil {
		return nil, fmt.Errorf("open redis: %w", err)
	}
	rc := a.Redis
	a.closers = append(a.closers, func() { _ = rc.Close() })

	a.Objects, err = objectstore.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	l.Info("object store ready", zap.String("driver", cfg.Storage.Driver), zap.String("bucket", cfg.Storage.Bucket))

	var closeEvents func()
	a.Events, closeEvents, err = events.Open(cfg.NATS, l)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	a.closers = append(a.closers, closeEvents)

	policy, err := authz.DefaultPolicy().Apply(cfg.Authz.Overrides)
	if err != nil {
		return nil, fmt.Errorf("authz overrides: %w", err)
	}
	store := repo.NewStore(a.DB)
	a.Gate = authz.NewGate(policy, authz.StoreFacts{Store: store}, l)
	for _, line := range policy.Describe() {
		l.Debug("authz rule", zap.String("rule", line))
	}

	a.Services = service.New(
		service.Deps{Store: store, Gate: a.Gate, Objects: a.Objects, Events: a.Events, Log: l},
		service.AuthDeps{
			JWT:      auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenTTLMin)*time.Minute),
			Denylist: redisx.NewDenylist(a.Redis),
		},
		service.Pagination{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit},
	)
	return a, nil
}

// Ping reports whether the database answers.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) RouterDeps() router.Deps {
	return router.Deps{
		Log:      a.Log,
		Config:   a.Config,
		Services: a.Services,
		Redis:    a.Redis,
		Ping:     a.Ping,
	}
}

// Close releases handles in reverse opening order. Safe to call twice.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
