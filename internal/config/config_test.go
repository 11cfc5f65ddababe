package config

import (
	"path/filepath"
	"testing"
	"time"

	"tradesim-go/internal/market"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "tradesim-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9190" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if cfg.Server.Addr != ":8181" {
		t.Fatalf("unexpected Server.Addr: %s", cfg.Server.Addr)
	}
	if cfg.Market.TickInterval() != 250*time.Millisecond {
		t.Fatalf("unexpected tick interval: %v", cfg.Market.TickInterval())
	}
	if cfg.Market.BarInterval() != 30*time.Second {
		t.Fatalf("unexpected bar interval: %v", cfg.Market.BarInterval())
	}
	if cfg.Market.HistoryBars != 20 {
		t.Fatalf("unexpected history bars: %d", cfg.Market.HistoryBars)
	}
	if cfg.Market.Seed != 42 {
		t.Fatalf("unexpected seed: %d", cfg.Market.Seed)
	}
	if cfg.Paper.StartingCash != 5000 {
		t.Fatalf("expected starting cash 5000, got %.2f", cfg.Paper.StartingCash)
	}
	if cfg.Paper.Recorder != "jsonl" {
		t.Fatalf("unexpected recorder: %s", cfg.Paper.Recorder)
	}
	if len(cfg.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(cfg.Assets))
	}
	btc := cfg.Assets[0]
	if btc.Symbol != "BTC" || btc.Kind != market.KindCrypto || btc.Price != 52000.50 {
		t.Fatalf("unexpected BTC asset: %+v", btc)
	}
	if cfg.Assets[1].ChangePercent != 1.5 {
		t.Fatalf("unexpected AAPL change percent: %v", cfg.Assets[1].ChangePercent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIntervalFallbacks(t *testing.T) {
	var m Market
	if m.TickInterval() != time.Second {
		t.Fatalf("expected 1s tick fallback, got %v", m.TickInterval())
	}
	if m.BarInterval() != time.Minute {
		t.Fatalf("expected 1m bar fallback, got %v", m.BarInterval())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Paper.StartingCash = 12345

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Paper.StartingCash != 12345 {
		t.Fatalf("round trip lost starting cash: %.2f", loaded.Paper.StartingCash)
	}
	if len(loaded.Assets) != len(cfg.Assets) {
		t.Fatalf("round trip lost assets: %d vs %d", len(loaded.Assets), len(cfg.Assets))
	}
}

func TestDefaultIsRunnable(t *testing.T) {
	cfg := Default()
	if cfg.Paper.StartingCash <= 0 {
		t.Fatal("default starting cash must be positive")
	}
	if len(cfg.Assets) == 0 {
		t.Fatal("default config must carry demo assets")
	}
	for _, a := range cfg.Assets {
		if a.Price <= 0 {
			t.Fatalf("asset %s has non-positive price", a.Symbol)
		}
		if a.Kind != market.KindStock && a.Kind != market.KindCrypto {
			t.Fatalf("asset %s has unknown kind %q", a.Symbol, a.Kind)
		}
	}
}
