package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// loadFromString writes yaml to a temp file and loads it.
func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

// loadErr expects Load to fail and returns the error.
func loadErr(t *testing.T, yaml string) error {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	return err
}

func TestLoad_Valid(t *testing.T) {
	yaml := `
observation:
  start: 2024-03-01T10:00:00Z
  duration: 8h
  ra_deg: 210.5
  dec_deg: -45.0
  site:
    name: askap
    lat_deg: -26.697
    lon_deg: 116.631
    height_m: 377.8
channels:
  freq_min_hz: 800.0e6
  freq_max_hz: 1088.0e6
  count: 288
ionosphere:
  type: file
  path: /data/obs42/rm.txt
  timestep: 10m
`
	cfg := loadFromString(t, yaml)

	if got := cfg.Observation.Start; !got.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("observation.start: got %v", got)
	}
	if cfg.Observation.Duration != 8*time.Hour {
		t.Errorf("observation.duration: got %v", cfg.Observation.Duration)
	}
	if got := cfg.Observation.End(); !got.Equal(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("observation End(): got %v", got)
	}
	if cfg.Observation.Site.Name != "askap" {
		t.Errorf("site.name: got %q", cfg.Observation.Site.Name)
	}
	if cfg.Channels.Count != 288 {
		t.Errorf("channels.count: got %d", cfg.Channels.Count)
	}
	if cfg.Ionosphere.Type != "file" {
		t.Errorf("ionosphere.type: got %q", cfg.Ionosphere.Type)
	}
	if cfg.Ionosphere.Timestep != 10*time.Minute {
		t.Errorf("ionosphere.timestep: got %v", cfg.Ionosphere.Timestep)
	}

	if err := cfg.CheckPredict(); err != nil {
		t.Errorf("CheckPredict: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	yaml := `
ionosphere:
  type: file
  path: /data/rm.txt
`
	cfg := loadFromString(t, yaml)

	if cfg.Ionosphere.Timestep != DefaultTimestep {
		t.Errorf("default timestep: got %v, want %v", cfg.Ionosphere.Timestep, DefaultTimestep)
	}
	if cfg.Daemon.HTTPPort != DefaultHTTPPort {
		t.Errorf("default http_port: got %d, want %d", cfg.Daemon.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Daemon.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("default broadcast_interval: got %v", cfg.Daemon.BroadcastInterval)
	}
	if cfg.Daemon.ResultTTL != DefaultResultTTL {
		t.Errorf("default result_ttl: got %v", cfg.Daemon.ResultTTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"unknown source type",
			"ionosphere:\n  type: telepathy\n",
		},
		{
			"unknown auth mode",
			"ionosphere:\n  type: http\n  url: http://x\n  auth:\n    mode: handshake\n",
		},
		{
			"file source without path",
			"ionosphere:\n  type: file\n",
		},
		{
			"exec source without command",
			"ionosphere:\n  type: exec\n",
		},
		{
			"http source without url",
			"ionosphere:\n  type: http\n",
		},
		{
			"dec out of range",
			"observation:\n  start: 2024-03-01T10:00:00Z\n  duration: 1h\n  dec_deg: -91\nionosphere:\n  type: file\n  path: /x\n",
		},
		{
			"negative duration",
			"observation:\n  start: 2024-03-01T10:00:00Z\n  duration: -1h\nionosphere:\n  type: file\n  path: /x\n",
		},
		{
			"inverted channel grid",
			"channels:\n  freq_min_hz: 2.0e9\n  freq_max_hz: 1.0e9\n  count: 16\nionosphere:\n  type: file\n  path: /x\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadErr(t, tt.yaml)
		})
	}
}

func TestCheckPredict_MissingSections(t *testing.T) {
	cfg := loadFromString(t, "ionosphere:\n  type: file\n  path: /x\n")
	if err := cfg.CheckPredict(); err == nil {
		t.Error("CheckPredict without observation: expected error")
	}

	cfg = loadFromString(t, `
observation:
  start: 2024-03-01T10:00:00Z
  duration: 1h
ionosphere:
  type: file
  path: /x
`)
	if err := cfg.CheckPredict(); err == nil {
		t.Error("CheckPredict without channels: expected error")
	}
}

func TestCheckDaemon(t *testing.T) {
	cfg := loadFromString(t, "ionosphere:\n  type: file\n  path: /x\n")
	if err := cfg.CheckDaemon(); err == nil {
		t.Error("CheckDaemon without spool_dir: expected error")
	}

	cfg = loadFromString(t, `
ionosphere:
  type: file
  path: /x
daemon:
  spool_dir: /var/spool/frion
`)
	if err := cfg.CheckDaemon(); err != nil {
		t.Errorf("CheckDaemon: %v", err)
	}
}

func TestAuthConfig_EnvResolution(t *testing.T) {
	t.Setenv("FRION_TEST_TOKEN", "tok-123")

	a := AuthConfig{Mode: "bearer", TokenEnv: "FRION_TEST_TOKEN"}
	if got := a.Token(); got != "tok-123" {
		t.Errorf("Token() = %q, want tok-123", got)
	}

	a = AuthConfig{Mode: "apikey"}
	if got := a.Key(); got != "" {
		t.Errorf("Key() with no KeyEnv = %q, want empty", got)
	}
}
