// Package config loads and writes the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CaptureConfig controls the packet source and pipeline buffers.
type CaptureConfig struct {
	Interface    string `yaml:"interface"`
	SnapshotLen  int32  `yaml:"snapshot_len"`
	Promiscuous  bool   `yaml:"promiscuous"`
	ChannelSize  int    `yaml:"channel_size"`
	RecentBuffer int    `yaml:"recent_buffer"`
}

// DashboardConfig controls the terminal views.
type DashboardConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
	StatsInterval   string `yaml:"stats_interval"`
}

// LoggingConfig controls where log lines go.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// ExportConfig holds the defaults for record exports.
type ExportConfig struct {
	DefaultFormat    string `yaml:"default_format"`
	DefaultDirectory string `yaml:"default_directory"`
}

// APIConfig controls the embedded stats HTTP server.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// NATSConfig controls the record pub/sub transport.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig controls the optional connection-flow sink.
type ClickHouseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Addr          string `yaml:"addr"`
	Database      string `yaml:"database"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	FlushInterval string `yaml:"flush_interval"`
}

// Config is the top-level configuration for the whole application.
type Config struct {
	Capture    CaptureConfig    `yaml:"capture"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Logging    LoggingConfig    `yaml:"logging"`
	Export     ExportConfig     `yaml:"export"`
	API        APIConfig        `yaml:"api"`
	NATS       NATSConfig       `yaml:"nats"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			SnapshotLen:  1600,
			Promiscuous:  true,
			ChannelSize:  1000,
			RecentBuffer: 1000,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: "1s",
			StatsInterval:   "10s",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
		Export: ExportConfig{
			DefaultFormat:    "json",
			DefaultDirectory: "./exports",
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "gosniff.records",
		},
		ClickHouse: ClickHouseConfig{
			Addr:          "127.0.0.1:9000",
			Database:      "default",
			Username:      "default",
			FlushInterval: "30s",
		},
	}
}

// Load reads the configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Interval parses a duration string from the config, falling back to def
// when the value is empty or malformed.
func Interval(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
