package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/auth"
	"github.com/diewo77/epic-events/internal/config"
	"github.com/diewo77/epic-events/internal/db"
	"github.com/diewo77/epic-events/internal/lib/sl"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/services"
)

// App wires the store, the session manager and the services for one
// command invocation.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *gorm.DB
	digest   auth.BcryptDigest
	sessions *auth.Manager
	svc      *services.Services
	reports  *report.Dispatcher

	in   io.Reader
	out  io.Writer
	json bool
}

// NewApp opens the store, brings the schema up to date and starts the
// notification dispatcher. Close must be called to flush notifications.
func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "main.NewApp"

	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.Setup(conn, cfg.Database); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dispatcher := report.NewDispatcher(log, cfg.Report.Buffer, reportSinks(cfg.Report, log)...)
	digest := auth.NewBcryptDigest(cfg.Auth.BcryptCost)

	sessions := auth.NewManager(auth.Options{
		Users:    auth.GormUserLookup(conn),
		Digest:   digest,
		Signer:   auth.NewJWTSigner(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Store:    auth.NewFileTokenStore(cfg.Auth.TokenPath),
		Reporter: dispatcher,
		Logger:   log,
	})

	svc := services.New(services.Deps{
		DB:         conn,
		Authorizer: policy.NewAuthorizer(),
		Reporter:   dispatcher,
		Logger:     log,
	}, digest)

	return &App{
		cfg:      cfg,
		log:      log,
		db:       conn,
		digest:   digest,
		sessions: sessions,
		svc:      svc,
		reports:  dispatcher,
	}, nil
}

// reportSinks always logs notifications. Redis and AMQP sinks are added when
// configured; a sink that cannot connect is skipped with a warning.
func reportSinks(cfg config.ReportConfig, log *slog.Logger) []report.Sink {
	sinks := []report.Sink{report.NewLogSink(log)}
	if cfg.RedisURL != "" {
		s, err := report.NewRedisStreamSink(cfg.RedisURL, cfg.RedisStream)
		if err != nil {
			log.Warn("redis report sink disabled", sl.Err(err))
		} else {
			sinks = append(sinks, s)
		}
	}
	if cfg.AMQPURL != "" {
		s, err := report.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("amqp report sink disabled", sl.Err(err))
		} else {
			sinks = append(sinks, s)
		}
	}
	return sinks
}

// Close drains pending notifications and releases the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.reports.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
