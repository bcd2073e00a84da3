package cmd

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

// app holds the shared runtime a subcommand needs: config, logger, and a
// pinged database connection.
type app struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
	sqlxDB *sqlx.DB

	tracerProvider *sdktrace.TracerProvider
}

// newApp loads configuration, builds the logger, and brings up the
// database through the startup dependency loop.
func newApp(ctx context.Context) (*app, error) {
	// A missing .env file is fine; the environment wins anyway.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	a := &app{cfg: cfg, logger: logger}

	if cfg.TracingEnabled {
		if err := a.setupTracing(ctx); err != nil {
			return nil, err
		}
	}

	sqlxDB, err := sqlx.Open(cfg.DatabaseDriver, cfg.DatabaseDSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	a.sqlxDB = sqlxDB
	a.db = database.NewDatabaseInstance(sqlxDB, logger)
	a.db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	a.db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	a.db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&databaseDependency{db: a.db})
	if err := boot.Start(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *app) setupTracing(ctx context.Context) error {
	exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
		Endpoint: a.cfg.OTLPEndpoint,
		Protocol: a.cfg.OTLPClientType,
		Insecure: true,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create OTLP exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", a.cfg.AppName)),
	)
	if err != nil {
		res = resource.Empty()
	}

	a.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(a.tracerProvider)
	tracing.SetTracer(otel.Tracer(a.cfg.AppName))
	return nil
}

// Close releases the database connection and flushes pending spans.
func (a *app) Close(ctx context.Context) {
	if a.sqlxDB != nil {
		if err := a.sqlxDB.Close(); err != nil {
			a.logger.WithContext(ctx).WithError(err).Warn("Failed to close database")
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.WithContext(ctx).WithError(err).Warn("Failed to shut down tracer provider")
		}
	}
}

// databaseDependency gates subcommand work on database reachability.
type databaseDependency struct {
	db database.DB
}

func (d *databaseDependency) GetName() string {
	return "postgres"
}

func (d *databaseDependency) DependsOn() []string {
	return nil
}

func (d *databaseDependency) Start(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *databaseDependency) Stop(context.Context) error {
	return nil
}
