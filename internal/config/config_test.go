package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STORAGE_BACKEND", "STORAGE_KEY", "HTTP_PORT", "HTTP_READ_TIMEOUT", "LOG_FORMAT", "SQLITE_PATH"} {
		t.Setenv(key, "") // restored on cleanup
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != "todo_lab_tasks" {
		t.Errorf("expected default key, got %q", cfg.Storage.Key)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s read timeout, got %v", cfg.HTTP.ReadTimeout)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STORAGE_KEY", "tasks")
	t.Setenv("HTTP_IDLE_TIMEOUT", "2m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Backend != BackendRedis {
		t.Errorf("expected redis backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Key != "tasks" {
		t.Errorf("expected key tasks, got %q", cfg.Storage.Key)
	}
	if cfg.HTTP.IdleTimeout != 2*time.Minute {
		t.Errorf("expected 2m idle timeout, got %v", cfg.HTTP.IdleTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:     AppConfig{LogFormat: "text"},
			Storage: StorageConfig{Backend: BackendMemory, Key: "k"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "memory is valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "postgres" }, wantErr: true},
		{name: "empty key", mutate: func(c *Config) { c.Storage.Key = " " }, wantErr: true},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Storage.Backend = BackendMySQL }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Backend = BackendRedis }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Redis.URL = "redis://localhost:6379/0"
		}},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Backend = BackendFile }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.App.LogFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
