package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"todolist/internal/config"
	"todolist/internal/controller"
	"todolist/internal/kv"
	"todolist/internal/store"
)

// app is what every subcommand works with: config, logger, backend and the loaded store.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	backend kv.Store
	store   *store.TaskStore
}

// loadApp reads config, applies flag overrides and loads the task collection.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if key, _ := cmd.Flags().GetString("key"); key != "" {
		cfg.Storage.Key = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.App, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{"backend": cfg.Storage.Backend, "key": cfg.Storage.Key}).Debug("storage opened")

	s := store.New(backend, cfg.Storage.Key, logger)
	s.Load(cmd.Context())
	return &app{cfg: cfg, logger: logger, backend: backend, store: s}, nil
}

func (a *app) Close() error {
	return a.backend.Close()
}

// controller builds a controller for one CLI invocation.
func (a *app) controller(prompter controller.Prompter, out io.Writer) *controller.Controller {
	notifier := controller.NotifierFunc(func(_ context.Context, msg string) {
		fmt.Fprintln(out, msg)
	})
	return controller.New(a.store, prompter, notifier, a.logger)
}

func newLogger(cfg config.AppConfig, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// openBackend connects the KV store selected by cfg.
func openBackend(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := ensureDir(cfg.Storage.SQLitePath); err != nil {
			return nil, err
		}
		return kv.NewSQLiteStore(cfg.Storage.SQLitePath)
	case config.BackendMySQL:
		return kv.NewMySQLStore(cfg.Storage.MySQLDSN)
	case config.BackendRedis:
		opts := &redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		if cfg.Redis.URL != "" {
			var err error
			if opts, err = redis.ParseURL(cfg.Redis.URL); err != nil {
				return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
			}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return kv.NewRedisStore(client, cfg.Redis.Prefix), nil
	case config.BackendFile:
		return kv.NewFileStore(cfg.Storage.FilePath)
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
