package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tradesim-go/internal/market"
	"tradesim-go/internal/order"
	"tradesim-go/internal/portfolio"
	"tradesim-go/internal/series"
)

func newTestDesk(t *testing.T, startingCash float64) *Desk {
	t.Helper()
	assets := []market.Asset{
		{Symbol: "BTC", Name: "Bitcoin", Price: 50000, Kind: market.KindCrypto},
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 100, Kind: market.KindStock},
	}
	stream := series.NewStream(series.NewGenerator(1), time.Second, time.Minute, 5)
	desk, err := New(zerolog.Nop(), assets, portfolio.NewLedger(startingCash), stream)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return desk
}

func TestNewSelectsFirstAsset(t *testing.T) {
	desk := newTestDesk(t, 1000)
	if got := desk.Selected().Symbol; got != "BTC" {
		t.Fatalf("expected BTC selected, got %s", got)
	}
	if got := len(desk.Bars()); got != 5 {
		t.Fatalf("expected live series immediately, got %d bars", got)
	}
}

func TestSelectAssetSwapsSeries(t *testing.T) {
	desk := newTestDesk(t, 1000)
	if err := desk.SelectAsset("AAPL"); err != nil {
		t.Fatalf("SelectAsset returned error: %v", err)
	}
	if got := desk.Selected().Symbol; got != "AAPL" {
		t.Fatalf("expected AAPL selected, got %s", got)
	}
	// Fresh history is generated from the new base price, so the walk stays
	// near 100 rather than 50000.
	for _, bar := range desk.Bars() {
		if bar.Close > 200 {
			t.Fatalf("series not regenerated from AAPL base price: %+v", bar)
		}
	}

	if err := desk.SelectAsset("DOGE"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if got := desk.Selected().Symbol; got != "AAPL" {
		t.Fatalf("failed selection must not change the current asset, got %s", got)
	}
}

func TestPlaceOrderFillsAtDisplayedPrice(t *testing.T) {
	desk := newTestDesk(t, 100000)
	fill, err := desk.PlaceOrder("BTC", order.Buy, 1)
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if fill.Price != 50000 || fill.Qty != 1 || fill.Side != order.Buy {
		t.Fatalf("unexpected fill: %+v", fill)
	}

	v := desk.Valuation()
	if math.Abs(v.Cash-50000) > 1e-9 {
		t.Fatalf("expected cash 50000, got %v", v.Cash)
	}
	if math.Abs(v.TotalValue-100000) > 1e-9 {
		t.Fatalf("buy at the mark keeps total value flat, got %v", v.TotalValue)
	}

	fills := desk.Blotter().Snapshot()
	if len(fills) != 1 || fills[0].Symbol != "BTC" {
		t.Fatalf("expected one blotter fill, got %+v", fills)
	}

	select {
	case evt := <-desk.Events():
		if evt.Type != "portfolio" || evt.Portfolio == nil {
			t.Fatalf("expected portfolio event after fill, got %+v", evt)
		}
	default:
		t.Fatal("expected an event after a fill")
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	desk := newTestDesk(t, 100)

	if _, err := desk.PlaceOrder("BTC", order.Buy, 1); !errors.Is(err, portfolio.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := desk.PlaceOrder("BTC", order.Sell, 1); !errors.Is(err, portfolio.ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
	if _, err := desk.PlaceOrder("DOGE", order.Buy, 1); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if _, err := desk.PlaceOrder("BTC", order.Side("HOLD"), 1); err == nil {
		t.Fatal("expected error for unknown side")
	}

	if got := len(desk.Blotter().Snapshot()); got != 0 {
		t.Fatalf("rejected orders must not reach the blotter, got %d fills", got)
	}
	if got := desk.Valuation().Cash; got != 100 {
		t.Fatalf("rejected orders must not move cash, got %v", got)
	}
}

type captureRecorder struct {
	fills []order.Fill
}

func (c *captureRecorder) Record(fill order.Fill) { c.fills = append(c.fills, fill) }

func TestPlaceOrderRoutesToRecorder(t *testing.T) {
	assets := []market.Asset{{Symbol: "ETH", Name: "Ethereum", Price: 2800, Kind: market.KindCrypto}}
	stream := series.NewStream(series.NewGenerator(2), time.Second, time.Minute, 5)
	rec := &captureRecorder{}
	desk, err := New(zerolog.Nop(), assets, portfolio.NewLedger(10000), stream, WithRecorder(rec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := desk.PlaceOrder("ETH", order.Buy, 2); err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if len(rec.fills) != 1 || rec.fills[0].Price != 2800 {
		t.Fatalf("recorder did not capture the fill: %+v", rec.fills)
	}
}
