package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("fleetview-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Map.Segments != 64 {
		t.Errorf("expected 64 segments, got %d", cfg.Map.Segments)
	}
	if cfg.Map.VectorEnabled {
		t.Error("vector backend should be off by default")
	}
	if cfg.Telemetry.ServiceName != "fleetview-test" {
		t.Errorf("expected service name fleetview-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLEETVIEW_MAP_ACCESS_TOKEN", "pk.env")
	t.Setenv("FLEETVIEW_MAP_VECTOR_ENABLED", "true")
	t.Setenv("FLEETVIEW_SERVER_PORT", "9090")

	cfg, err := Load("fleetview-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Map.AccessToken != "pk.env" {
		t.Errorf("expected token from env, got %q", cfg.Map.AccessToken)
	}
	if !cfg.Map.VectorEnabled {
		t.Error("expected vector_enabled from env")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Map:    MapConfig{Segments: 2, MaxZoom: 15, CloseUpZoom: 15},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "nats.url", "map.segments"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %s: %v", want, err)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "db", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/db?sslmode=disable" {
		t.Errorf("unexpected dsn: %s", got)
	}
}
