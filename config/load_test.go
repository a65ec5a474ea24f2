package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/config/source"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := config.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.App.Name != "mosaic" {
		t.Errorf("App.Name = %q, want mosaic", cfg.App.Name)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Events.BusBuffer != 64 || cfg.Events.QueueCapacity != 256 {
		t.Errorf("Events = %+v, want buffers 64/256", cfg.Events)
	}
	if cfg.Shutdown.ModuleTimeout != 5*time.Second {
		t.Errorf("ModuleTimeout = %v, want 5s", cfg.Shutdown.ModuleTimeout)
	}
}

func TestLoad_LaterSourcesWin(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "mosaic.yaml", `
server:
  addr: ":7000"
database:
  path: from-file.db
logging:
  level: debug
`)
	t.Setenv("MOSAIC_DATABASE_PATH", "from-env.db")
	t.Setenv("MOSAIC_SERVER_ADDR", ":7001")

	cfg, err := config.Load(context.Background(),
		&source.FileSource{BasePath: dir},
		&source.EnvSource{},
		&source.CLISource{Args: []string{"--server.addr=:7002"}},
	)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Server.Addr != ":7002" {
		t.Errorf("Server.Addr = %q, want cli value :7002", cfg.Server.Addr)
	}
	if cfg.Database.Path != "from-env.db" {
		t.Errorf("Database.Path = %q, want env value from-env.db", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want file value debug", cfg.Logging.Level)
	}
}

func TestLoad_StringValuesConvert(t *testing.T) {
	t.Setenv("MOSAIC_EVENTS_BUSBUFFER", "17")
	t.Setenv("MOSAIC_SHUTDOWN_MODULETIMEOUT", "2s")

	cfg, err := config.Load(context.Background(), &source.EnvSource{})
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.Events.BusBuffer != 17 {
		t.Errorf("BusBuffer = %d, want 17", cfg.Events.BusBuffer)
	}
	if cfg.Shutdown.ModuleTimeout != 2*time.Second {
		t.Errorf("ModuleTimeout = %v, want 2s", cfg.Shutdown.ModuleTimeout)
	}
}

func TestLoad_MissingRequiredFileFails(t *testing.T) {
	_, err := config.Load(context.Background(), &source.FileSource{BasePath: t.TempDir()})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_InvalidValueIsBindError(t *testing.T) {
	t.Setenv("MOSAIC_LOGGING_LEVEL", "loud")

	_, err := config.Load(context.Background(), &source.EnvSource{})
	var berr *config.BindError
	if !errors.As(err, &berr) {
		t.Fatalf("Load error = %v, want BindError", err)
	}
	if berr.Stage != "validate" {
		t.Errorf("BindError.Stage = %q, want validate", berr.Stage)
	}
}
