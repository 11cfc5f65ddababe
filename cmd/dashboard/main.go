// Binary dashboard runs the simulated trading desk behind the HTTP/WebSocket
// API so any browser frontend can render the chart and portfolio.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tradesim-go/internal/config"
	"tradesim-go/internal/engine"
	"tradesim-go/internal/metrics"
	"tradesim-go/internal/portfolio"
	"tradesim-go/internal/series"
	"tradesim-go/internal/server"
	"tradesim-go/internal/util"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, loadErr := config.Load(*configPath)
	if loadErr != nil {
		cfg = config.Default()
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.App.LogLevel = lvl
	}

	log := util.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("config not loaded, using defaults")
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seed := cfg.Market.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := series.NewGenerator(seed)
	stream := series.NewStream(gen, cfg.Market.TickInterval(), cfg.Market.BarInterval(), cfg.Market.HistoryBars)
	ledger := portfolio.NewLedger(cfg.Paper.StartingCash)

	recorder, closeRecorder, err := buildRecorder(cfg.Paper, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open fill recorder")
	}
	defer closeRecorder()

	desk, err := engine.New(log, cfg.Assets, ledger, stream, engine.WithRecorder(recorder))
	if err != nil {
		log.Fatal().Err(err).Msg("build desk")
	}

	go func() {
		if err := desk.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("desk stopped")
			cancel()
		}
	}()

	srv := server.New(log, desk, cfg.Server.Addr, cfg.App.Env)
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
			cancel()
		}
	}()

	log.Info().Str("env", cfg.App.Env).Float64("cash", cfg.Paper.StartingCash).Msg("trading desk started")
	<-ctx.Done()
	log.Info().Msg("shutting down")
}

func buildRecorder(cfg config.Paper, log zerolog.Logger) (portfolio.FillRecorder, func(), error) {
	switch cfg.Recorder {
	case "jsonl":
		rec, err := portfolio.NewJSONLRecorder(cfg.FillsPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.FillsPath).Msg("recording fills to jsonl")
		return rec, func() { _ = rec.Close() }, nil
	case "sqlite":
		rec, err := portfolio.NewSQLiteRecorder(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("recording fills to sqlite")
		return rec, func() { _ = rec.Close() }, nil
	default:
		return portfolio.NewNoopRecorder(), func() {}, nil
	}
}
