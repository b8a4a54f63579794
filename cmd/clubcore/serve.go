package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CR-8/clubcore/pkg/api"
	"github.com/CR-8/clubcore/pkg/config"
	"github.com/CR-8/clubcore/pkg/health"
	"github.com/CR-8/clubcore/pkg/observability/logger"
	"github.com/CR-8/clubcore/pkg/observability/metrics"
	"github.com/CR-8/clubcore/pkg/observability/tracing"
	"github.com/CR-8/clubcore/pkg/resource"
	"github.com/CR-8/clubcore/pkg/resources"
	"github.com/CR-8/clubcore/pkg/server"
	mongostore "github.com/CR-8/clubcore/pkg/store/mongodb"
	s3store "github.com/CR-8/clubcore/pkg/store/s3"
	"github.com/CR-8/clubcore/pkg/version"
)

func loadConfig(cfgPath string) (*config.Config, error) {
	return config.NewLoader(cfgPath, envPrefix).Load()
}

// newLogger builds the process logger. The returned cleanup drains the
// async queue before syncing the zap core, so shutdown loses no entries.
func newLogger(cfg config.LoggingConfig) (logger.Logger, func(), error) {
	level, err := logger.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logger.ParseLogFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}
	base, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
	if err != nil {
		return nil, nil, err
	}
	log := logger.WrapAsync(base, logger.AsyncConfig{Enabled: cfg.Async})
	cleanup := func() {
		if async, ok := log.(*logger.AsyncLogger); ok {
			async.Stop()
		}
		_ = base.Sync()
	}
	return log, cleanup, nil
}

func runServe(ctx context.Context, cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	log, logCleanup, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logCleanup()

	log.Info("starting service", "version", version.Current(cfg.Service.Name).String(), "environment", cfg.Service.Environment)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoAdapter, err := mongostore.NewAdapter(mongostore.Config{
		URL:              cfg.MongoDB.URL,
		Database:         cfg.MongoDB.Database,
		ConnectTimeout:   cfg.MongoDB.ConnectTimeout,
		OperationTimeout: cfg.MongoDB.OperationTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if closeErr := mongoAdapter.Close(); closeErr != nil {
			log.Error("failed to close mongodb adapter", "error", closeErr)
		}
	}()

	var storage resource.ObjectStore
	var s3Adapter *s3store.Adapter
	if cfg.Storage.Enabled {
		s3Adapter, err = s3store.NewAdapter(s3store.Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		}, log)
		if err != nil {
			return fmt.Errorf("connect object storage: %w", err)
		}
		storage = s3Adapter
		defer func() {
			if closeErr := s3Adapter.Close(); closeErr != nil {
				log.Error("failed to close s3 adapter", "error", closeErr)
			}
		}()
	}

	tracerProvider, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Service.Name,
		ServiceVersion: version.Current(cfg.Service.Name).Version,
		Environment:    cfg.Service.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("create tracer provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if shutdownErr := tracerProvider.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error("failed to shutdown tracer provider", "error", shutdownErr)
		}
	}()

	handlers, err := buildHandlers(ctx, mongoAdapter, storage, cfg.Storage.Enabled, log)
	if err != nil {
		return err
	}

	metricsRegistry := metrics.NewRegistry()

	healthRegistry := health.NewRegistry()
	healthRegistry.Register(health.NewAdapterChecker("mongodb", mongoAdapter, 5*time.Second))
	if s3Adapter != nil {
		healthRegistry.Register(health.NewAdapterChecker("s3", s3Adapter, 5*time.Second))
	}

	publicEngine := server.NewPublicEngine(log, server.PublicOptions{
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		Metrics:   metricsRegistry,
		Tracer:    tracerProvider.Tracer("http"),
		Handlers:  handlers,
	})
	publicServer := server.New(server.Config{
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, publicEngine, log)

	errChan := make(chan error, 2)

	go func() {
		errChan <- publicServer.Start(ctx)
	}()

	if cfg.Management.Enabled {
		mgmtEngine := server.NewManagementEngine(log, healthRegistry, metricsRegistry)
		mgmtServer := server.New(server.Config{
			Port:         cfg.Management.Port,
			ReadTimeout:  cfg.Management.ReadTimeout,
			WriteTimeout: cfg.Management.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		}, mgmtEngine, log)
		go func() {
			errChan <- mgmtServer.Start(ctx)
		}()
	}

	err = <-errChan
	stop()
	if err != nil {
		return err
	}

	log.Info("service stopped")
	return nil
}

// buildHandlers creates one service and handler per declared resource
// and ensures the unique indexes backing their constraints.
func buildHandlers(ctx context.Context, adapter *mongostore.Adapter, storage resource.ObjectStore, storageEnabled bool, log logger.Logger) ([]*api.Handler, error) {
	defs := resources.All()
	handlers := make([]*api.Handler, 0, len(defs))

	for i := range defs {
		def := &defs[i]

		if indexes := resources.IndexModels(&def.Schema); len(indexes) > 0 {
			if err := adapter.EnsureIndexes(ctx, def.Schema.Collection, indexes); err != nil {
				return nil, fmt.Errorf("ensure indexes for %s: %w", def.Schema.Name, err)
			}
		}

		coll, err := resource.NewMongoCollection(adapter, def.Schema.Collection)
		if err != nil {
			return nil, fmt.Errorf("open collection %s: %w", def.Schema.Name, err)
		}

		var store resource.ObjectStore
		if storageEnabled && def.Schema.FileKeyField != "" {
			store = storage
		}

		svc := resource.NewService(&def.Schema, coll, store, def.Reducers, log)
		handlers = append(handlers, api.NewHandler(svc, store, log))
	}

	return handlers, nil
}
