// Package config loads settings from an optional INI file, a .env file and
// PDFTASK_<SECTION>_<KEY> environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-ini/ini"
	"github.com/joho/godotenv"

	"github.com/wudi/pdftask/engine"
	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/observability"
	"github.com/wudi/pdftask/recovery"
	"github.com/wudi/pdftask/security"
)

const EnvPrefix = "PDFTASK_"

type Config struct {
	Task    TaskConfig    `ini:"task"`
	Limits  LimitsConfig  `ini:"limits"`
	Log     LogConfig     `ini:"log"`
	Server  ServerConfig  `ini:"server"`
	Storage StorageConfig `ini:"storage"`
	History HistoryConfig `ini:"history"`
}

type TaskConfig struct {
	Validate       bool   `ini:"validate"`
	Creator        string `ini:"creator"`
	DefaultVersion string `ini:"default_version"`
	Strict         bool   `ini:"strict"`
	Recovery       string `ini:"recovery"`
}

type LimitsConfig struct {
	// MaxSourceSize accepts human sizes such as "256MB".
	MaxSourceSize      string        `ini:"max_source_size"`
	MaxSources         int           `ini:"max_sources"`
	MaxOutputDocuments int           `ini:"max_output_documents"`
	MaxScriptTime      time.Duration `ini:"max_script_time"`
	MaxExecutionTime   time.Duration `ini:"max_execution_time"`
}

type LogConfig struct {
	Level       string `ini:"level"`
	Development bool   `ini:"development"`
}

type ServerConfig struct {
	Addr           string   `ini:"addr"`
	MaxConnections int      `ini:"max_connections"`
	RateLimit      int      `ini:"rate_limit"`
	AllowedOrigins []string `ini:"allowed_origins" delim:","`
	// TokenHash is the bcrypt hash of the bearer token; empty disables auth.
	TokenHash string `ini:"token_hash"`
	MaxUpload string `ini:"max_upload"`
}

type StorageConfig struct {
	Endpoint  string `ini:"endpoint"`
	AccessKey string `ini:"access_key"`
	SecretKey string `ini:"secret_key"`
	Bucket    string `ini:"bucket"`
	Region    string `ini:"region"`
	Prefix    string `ini:"prefix"`
	Secure    bool   `ini:"secure"`
}

type HistoryConfig struct {
	DSN   string `ini:"dsn"`
	Table string `ini:"table"`
}

func Default() Config {
	l := security.DefaultLimits()
	return Config{
		Task: TaskConfig{
			Validate:       true,
			Creator:        engine.DefaultCreator,
			DefaultVersion: pdf.Version17.String(),
			Recovery:       "strict",
		},
		Limits: LimitsConfig{
			MaxSourceSize:      humanize.IBytes(uint64(l.MaxSourceSize)),
			MaxSources:         l.MaxSources,
			MaxOutputDocuments: l.MaxOutputDocuments,
			MaxScriptTime:      l.MaxScriptTime,
			MaxExecutionTime:   l.MaxExecutionTime,
		},
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxConnections: 64,
			RateLimit:      60,
			AllowedOrigins: []string{"*"},
			MaxUpload:      "64MiB",
		},
		Storage: StorageConfig{Secure: true},
	}
}

// Load reads path (optional, "" skips it) on top of the defaults, then .env and the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	f := ini.Empty()
	if path != "" {
		var err error
		if f, err = ini.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	applyEnv(f, os.Environ())

	cfg := Default()
	if err := f.MapTo(&cfg); err != nil {
		return Config{}, fmt.Errorf("map config: %w", err)
	}
	return cfg, cfg.Validate()
}

// applyEnv copies PDFTASK_SECTION_KEY=value pairs into f.
func applyEnv(f *ini.File, environ []string) {
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_")
		if !ok || key == "" {
			continue
		}
		f.Section(section).Key(key).SetValue(v)
	}
}

func (c Config) Validate() error {
	if _, err := pdf.ParseVersion(c.Task.DefaultVersion); err != nil {
		return fmt.Errorf("task.default_version: %w", err)
	}
	if _, ok := recovery.ByName(c.Task.Recovery); !ok {
		return fmt.Errorf("task.recovery: unknown strategy %q", c.Task.Recovery)
	}
	if _, err := humanize.ParseBytes(c.Limits.MaxSourceSize); err != nil {
		return fmt.Errorf("limits.max_source_size: %w", err)
	}
	if _, err := humanize.ParseBytes(c.Server.MaxUpload); err != nil {
		return fmt.Errorf("server.max_upload: %w", err)
	}
	return nil
}

func (c Config) SecurityLimits() security.Limits {
	size, _ := humanize.ParseBytes(c.Limits.MaxSourceSize)
	return security.Limits{
		MaxSourceSize:      int64(size),
		MaxSources:         c.Limits.MaxSources,
		MaxOutputDocuments: c.Limits.MaxOutputDocuments,
		MaxScriptTime:      c.Limits.MaxScriptTime,
		MaxExecutionTime:   c.Limits.MaxExecutionTime,
	}.Normalize()
}

// MaxUploadBytes is the request body cap of the HTTP server.
func (c Config) MaxUploadBytes() int64 {
	n, _ := humanize.ParseBytes(c.Server.MaxUpload)
	return int64(n)
}

// Engine builds the engine configuration.
func (c Config) Engine(logger observability.Logger) engine.Config {
	v, _ := pdf.ParseVersion(c.Task.DefaultVersion)
	strategy, _ := recovery.ByName(c.Task.Recovery)
	return engine.Config{
		Creator:        c.Task.Creator,
		DefaultVersion: v,
		Strict:         c.Task.Strict,
		Limits:         c.SecurityLimits(),
		Recovery:       strategy,
		Logger:         logger,
	}
}
