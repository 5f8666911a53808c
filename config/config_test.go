package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-ini/ini"

	"github.com/wudi/pdftask/model/pdf"
	"github.com/wudi/pdftask/recovery"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Task.Validate || cfg.Server.Addr != ":8080" || cfg.Task.Creator != "pdftask" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if got := cfg.SecurityLimits().MaxSourceSize; got != 256*1024*1024 {
		t.Fatalf("max source size = %d", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "pdftask.ini")
	content := `
[task]
default_version = 1.6
recovery = lenient

[limits]
max_source_size = 10MB
max_script_time = 500ms

[server]
addr = :9090
allowed_origins = https://a.example, https://b.example
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PDFTASK_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PDFTASK_SERVER_ADDR", ":7070")
	t.Setenv("PDFTASK_LIMITS_MAX_SOURCES", "3")
	t.Cleanup(func() { os.Unsetenv("PDFTASK_LOG_LEVEL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env should win over the file, addr = %s", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf(".env not loaded, level = %s", cfg.Log.Level)
	}
	limits := cfg.SecurityLimits()
	if limits.MaxSourceSize != 10_000_000 || limits.MaxSources != 3 || limits.MaxScriptTime != 500*time.Millisecond {
		t.Fatalf("limits = %+v", limits)
	}
	ec := cfg.Engine(nil)
	if ec.DefaultVersion != pdf.Version16 {
		t.Fatalf("default version = %s", ec.DefaultVersion)
	}
	if _, ok := ec.Recovery.(*recovery.LenientStrategy); !ok {
		t.Fatalf("recovery = %T", ec.Recovery)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Task.DefaultVersion = "2.5"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("bad version accepted")
	}
	cfg = Default()
	cfg.Task.Recovery = "optimistic"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("bad recovery accepted")
	}
	cfg = Default()
	cfg.Limits.MaxSourceSize = "lots"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("bad size accepted")
	}
}

func TestApplyEnv(t *testing.T) {
	f := ini.Empty()
	applyEnv(f, []string{"PDFTASK_HISTORY_DSN=postgres://x", "HOME=/root", "PDFTASK_BROKEN", "PDFTASK_NOKEY_"})
	if got := f.Section("history").Key("dsn").String(); got != "postgres://x" {
		t.Fatalf("dsn = %q", got)
	}
	if f.Section("nokey").HasKey("") {
		t.Fatalf("empty key applied")
	}
}
