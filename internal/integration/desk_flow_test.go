package integration

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradesim-go/internal/engine"
	"tradesim-go/internal/market"
	"tradesim-go/internal/order"
	"tradesim-go/internal/portfolio"
	"tradesim-go/internal/series"
)

func TestDeskFlowTradesAgainstLiveSeries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assets := []market.Asset{
		{Symbol: "BTC", Name: "Bitcoin", Price: 52000.50, Kind: market.KindCrypto},
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 167.50, Kind: market.KindStock},
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	stream := series.NewStream(series.NewGenerator(11), 5*time.Millisecond, time.Minute, 20)
	ledger := portfolio.NewLedger(100000)
	desk, err := engine.New(logger, assets, ledger, stream)
	if err != nil {
		t.Fatalf("engine.New returned error: %v", err)
	}

	go func() { _ = desk.Run(ctx) }()

	// Wait for the live series to tick at least once.
	deadline := time.After(3 * time.Second)
	sawBar := false
	for !sawBar {
		select {
		case evt := <-desk.Events():
			if evt.Type == "bar" && evt.Bar != nil {
				if evt.Bar.Symbol != "BTC" {
					t.Fatalf("expected BTC updates, got %s", evt.Bar.Symbol)
				}
				sawBar = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for a bar update")
		}
	}

	if _, err := desk.PlaceOrder("BTC", order.Buy, 0.5); err != nil {
		t.Fatalf("buy rejected: %v", err)
	}
	if _, err := desk.PlaceOrder("BTC", order.Sell, 0.25); err != nil {
		t.Fatalf("sell rejected: %v", err)
	}

	v := desk.Valuation()
	var positionValue float64
	for _, pos := range v.Positions {
		positionValue += pos.Value
	}
	if math.Abs(v.Cash+positionValue-v.TotalValue) > 1e-6 {
		t.Fatalf("valuation did not balance: %+v", v)
	}
	pos, ok := ledger.Position("BTC")
	if !ok || math.Abs(pos.Amount-0.25) > 1e-9 {
		t.Fatalf("expected remaining 0.25 BTC, got %+v ok=%v", pos, ok)
	}

	if fills := desk.Blotter().Snapshot(); len(fills) != 2 {
		t.Fatalf("expected 2 fills in blotter, got %d", len(fills))
	}
	if !strings.Contains(buf.String(), "order filled") {
		t.Fatalf("expected executor log output, got %s", buf.String())
	}

	// An oversized order is rejected and leaves everything intact.
	if _, err := desk.PlaceOrder("AAPL", order.Sell, 1); err == nil {
		t.Fatal("expected rejection selling an asset never bought")
	}
	if fills := desk.Blotter().Snapshot(); len(fills) != 2 {
		t.Fatalf("rejection reached the blotter: %d fills", len(fills))
	}

	cancel()
}
