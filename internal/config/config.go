package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Redis   RedisConfig
}

type AppConfig struct {
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"` // "text" or "json"
}

type HTTPConfig struct {
	Port         string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type StorageConfig struct {
	Backend    string `env:"STORAGE_BACKEND" env-default:"sqlite"`
	Key        string `env:"STORAGE_KEY" env-default:"todo_lab_tasks"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"./data/todolist.db"`
	MySQLDSN   string `env:"MYSQL_DSN" env-default:""`
	FilePath   string `env:"FILE_PATH" env-default:"./data/todolist.json"`
}

type RedisConfig struct {
	// URL overrides Addr/Password/DB when set, e.g. redis://:secret@localhost:6379/0
	URL      string `env:"REDIS_URL" env-default:""`
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	Prefix   string `env:"REDIS_PREFIX" env-default:"todolist:"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMySQL:
		if c.Storage.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" && c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR or REDIS_URL is required for the redis backend")
		}
	case BackendFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("FILE_PATH is required for the file backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q: expected sqlite, mysql, redis, file or memory", c.Storage.Backend)
	}

	switch c.App.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got %q", c.App.LogFormat)
	}
	return nil
}
