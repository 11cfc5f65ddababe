// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tradesim-go/internal/market"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Server holds the dashboard API listen address.
type Server struct {
	Addr string `yaml:"addr"`
}

// Market tunes the synthetic series generator cadence.
type Market struct {
	TickIntervalMs int   `yaml:"tick_interval_ms"`
	BarIntervalMs  int   `yaml:"bar_interval_ms"`
	HistoryBars    int   `yaml:"history_bars"`
	Seed           int64 `yaml:"seed"`
}

// TickInterval returns the tick cadence as a duration, falling back to 1s.
func (m Market) TickInterval() time.Duration {
	if m.TickIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(m.TickIntervalMs) * time.Millisecond
}

// BarInterval returns the bar width as a duration, falling back to one minute.
func (m Market) BarInterval() time.Duration {
	if m.BarIntervalMs <= 0 {
		return time.Minute
	}
	return time.Duration(m.BarIntervalMs) * time.Millisecond
}

// Paper captures the simulated account settings and the fill audit trail target.
type Paper struct {
	StartingCash float64 `yaml:"starting_cash"`
	Recorder     string  `yaml:"recorder"` // none | jsonl | sqlite
	FillsPath    string  `yaml:"fills_path"`
	SQLitePath   string  `yaml:"sqlite_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App    App            `yaml:"app"`
	Server Server         `yaml:"server"`
	Market Market         `yaml:"market"`
	Paper  Paper          `yaml:"paper"`
	Assets []market.Asset `yaml:"assets"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Default returns a runnable configuration with the demo asset set, used when
// no config file is present.
func Default() *Config {
	return &Config{
		App: App{
			Name:        "tradesim",
			Env:         "dev",
			MetricsAddr: ":9100",
			LogLevel:    "info",
		},
		Server: Server{Addr: ":8080"},
		Market: Market{
			TickIntervalMs: 1000,
			BarIntervalMs:  60000,
			HistoryBars:    100,
		},
		Paper: Paper{
			StartingCash: 100000,
			Recorder:     "none",
			FillsPath:    "data/fills.jsonl",
			SQLitePath:   "data/fills.db",
		},
		Assets: []market.Asset{
			{Symbol: "BTC", Name: "Bitcoin", Price: 52000.50, Change: 1200.5, ChangePercent: 2.3, Volume: 28000000000, Kind: market.KindCrypto},
			{Symbol: "ETH", Name: "Ethereum", Price: 2800.75, Change: 45.2, ChangePercent: 1.6, Volume: 15000000000, Kind: market.KindCrypto},
			{Symbol: "AAPL", Name: "Apple Inc.", Price: 167.50, Change: 2.5, ChangePercent: 1.5, Volume: 1000000, Kind: market.KindStock},
			{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 134.20, Change: -1.2, ChangePercent: -0.9, Volume: 800000, Kind: market.KindStock},
		},
	}
}
