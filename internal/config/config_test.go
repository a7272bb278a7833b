package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Capture.SnapshotLen != 1600 {
		t.Errorf("SnapshotLen = %d, want 1600", cfg.Capture.SnapshotLen)
	}
	if !cfg.Capture.Promiscuous {
		t.Error("Promiscuous should default to true")
	}
	if cfg.Capture.RecentBuffer != 1000 {
		t.Errorf("RecentBuffer = %d, want 1000", cfg.Capture.RecentBuffer)
	}
	if cfg.Dashboard.RefreshInterval != "1s" {
		t.Errorf("RefreshInterval = %q, want 1s", cfg.Dashboard.RefreshInterval)
	}
	if cfg.Logging.Level != "info" || !cfg.Logging.Console {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Export.DefaultFormat != "json" || cfg.Export.DefaultDirectory != "./exports" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if cfg.API.Enabled || cfg.NATS.Enabled || cfg.ClickHouse.Enabled {
		t.Error("optional integrations must default to disabled")
	}
	if cfg.NATS.Subject != "gosniff.records" {
		t.Errorf("NATS subject = %q", cfg.NATS.Subject)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
capture:
  interface: eth1
  snapshot_len: 256
nats:
  enabled: true
  subject: lab.records
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Capture.Interface != "eth1" {
		t.Errorf("Interface = %q, want eth1", cfg.Capture.Interface)
	}
	if cfg.Capture.SnapshotLen != 256 {
		t.Errorf("SnapshotLen = %d, want 256", cfg.Capture.SnapshotLen)
	}
	if !cfg.NATS.Enabled || cfg.NATS.Subject != "lab.records" {
		t.Errorf("NATS = %+v", cfg.NATS)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Capture.ChannelSize != 1000 {
		t.Errorf("ChannelSize = %d, want default 1000", cfg.Capture.ChannelSize)
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("NATS URL = %q, want default", cfg.NATS.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capture: [not a map"), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to unmarshal config YAML") {
		t.Errorf("err = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Capture.Interface = "wlan0"
	cfg.API.Enabled = true
	cfg.ClickHouse.Password = "secret"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Capture.Interface != "wlan0" {
		t.Errorf("Interface = %q", got.Capture.Interface)
	}
	if !got.API.Enabled {
		t.Error("API.Enabled lost in round trip")
	}
	if got.ClickHouse.Password != "secret" {
		t.Errorf("ClickHouse.Password = %q", got.ClickHouse.Password)
	}
}

func TestInterval(t *testing.T) {
	def := 10 * time.Second
	cases := []struct {
		value string
		want  time.Duration
	}{
		{"", def},
		{"250ms", 250 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"1m", time.Minute},
		{"garbage", def},
		{"-1s", def},
		{"0s", def},
	}
	for _, c := range cases {
		if got := Interval(c.value, def); got != c.want {
			t.Errorf("Interval(%q) = %v, want %v", c.value, got, c.want)
		}
	}
}
