// Package engine composes the price stream and the ledger behind a single
// writer, routing asset selection, order intents, and tick updates.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradesim-go/internal/market"
	"tradesim-go/internal/metrics"
	"tradesim-go/internal/order"
	"tradesim-go/internal/portfolio"
	"tradesim-go/internal/series"
)

// ErrUnknownSymbol rejects orders and selections for symbols outside the
// reference asset list.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Event is a single push to display consumers: either the bar that changed
// on a tick or a fresh portfolio valuation.
type Event struct {
	Type      string               `json:"type"` // "bar" | "portfolio"
	Bar       *series.Update       `json:"bar,omitempty"`
	Portfolio *portfolio.Valuation `json:"portfolio,omitempty"`
}

// Desk owns the live stream, the ledger, and the fill pipeline. All state
// transitions are applied one at a time in arrival order.
type Desk struct {
	log      zerolog.Logger
	assets   []market.Asset
	bySymbol map[string]market.Asset
	quotes   map[string]float64
	ledger   *portfolio.Ledger
	blotter  *portfolio.Blotter
	recorder portfolio.FillRecorder
	executor *order.Executor
	stream   *series.Stream
	clock    func() time.Time
	events   chan Event

	mu       sync.Mutex
	selected string
}

// Option configures Desk construction parameters.
type Option func(*Desk)

// WithRecorder attaches a fill audit trail.
func WithRecorder(rec portfolio.FillRecorder) Option {
	return func(d *Desk) {
		if rec != nil {
			d.recorder = rec
		}
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(d *Desk) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// New builds a desk over the reference assets and selects the first one so a
// live series exists immediately.
func New(log zerolog.Logger, assets []market.Asset, ledger *portfolio.Ledger, stream *series.Stream, opts ...Option) (*Desk, error) {
	if len(assets) == 0 {
		return nil, errors.New("at least one asset required")
	}
	d := &Desk{
		log:      log,
		assets:   assets,
		bySymbol: make(map[string]market.Asset, len(assets)),
		quotes:   market.Quotes(assets),
		ledger:   ledger,
		blotter:  portfolio.NewBlotter(64),
		recorder: portfolio.NewNoopRecorder(),
		executor: order.NewExecutor(log),
		stream:   stream,
		clock:    time.Now,
		events:   make(chan Event, 256),
	}
	for _, a := range assets {
		d.bySymbol[a.Symbol] = a
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.SelectAsset(assets[0].Symbol); err != nil {
		return nil, err
	}
	return d, nil
}

// Assets returns the reference asset list in configuration order.
func (d *Desk) Assets() []market.Asset {
	out := make([]market.Asset, len(d.assets))
	copy(out, d.assets)
	return out
}

// Asset looks up reference data for a symbol.
func (d *Desk) Asset(symbol string) (market.Asset, bool) {
	a, ok := d.bySymbol[symbol]
	return a, ok
}

// SelectAsset switches the live series to the given symbol, discarding the
// prior series and generating fresh history from the asset's base price.
func (d *Desk) SelectAsset(symbol string) error {
	asset, ok := d.bySymbol[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	d.mu.Lock()
	d.selected = symbol
	d.mu.Unlock()
	d.stream.Reset(symbol, asset.Price)
	d.log.Info().Str("sym", symbol).Msg("asset selected")
	return nil
}

// Selected returns the asset whose series is currently live.
func (d *Desk) Selected() market.Asset {
	d.mu.Lock()
	symbol := d.selected
	d.mu.Unlock()
	return d.bySymbol[symbol]
}

// Bars returns a copy of the live series.
func (d *Desk) Bars() []market.Bar {
	return d.stream.Bars()
}

// Blotter exposes the in-memory fill log.
func (d *Desk) Blotter() *portfolio.Blotter { return d.blotter }

// PlaceOrder executes a buy or sell at the asset's displayed price. A
// rejection leaves the ledger unchanged and is returned to the caller, never
// raised as a fault.
func (d *Desk) PlaceOrder(symbol string, side order.Side, qty float64) (order.Fill, error) {
	if !side.Valid() {
		return order.Fill{}, fmt.Errorf("unknown order side %q", side)
	}
	asset, ok := d.bySymbol[symbol]
	if !ok {
		return order.Fill{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	quote := asset.Price
	if err := d.ledger.PlaceOrder(symbol, asset.Kind, side, qty, quote); err != nil {
		metrics.OrdersRejectedTotal.WithLabelValues(portfolio.Reason(err)).Inc()
		d.log.Warn().Err(err).Str("sym", symbol).Str("side", string(side)).Float64("qty", qty).Msg("order rejected")
		return order.Fill{}, err
	}

	fill := order.Fill{Symbol: symbol, Side: side, Qty: qty, Price: quote, Ts: d.clock()}
	d.blotter.Record(fill)
	d.recorder.Record(fill)
	d.executor.Submit(fill)
	d.publishPortfolio()
	return fill, nil
}

// Valuation marks the ledger against the reference quotes.
func (d *Desk) Valuation() portfolio.Valuation {
	return d.ledger.Valuation(d.quotes)
}

// Events returns the stream of display pushes. Slow consumers miss events
// rather than blocking the engine.
func (d *Desk) Events() <-chan Event { return d.events }

// Run drives the live series until the context is canceled. Each tick pushes
// the changed bar and a fresh valuation. Cancelling stops series updates
// without touching the ledger.
func (d *Desk) Run(ctx context.Context) error {
	updates := make(chan series.Update, 64)
	errc := make(chan error, 1)
	go func() { errc <- d.stream.Run(ctx, updates) }()

	for {
		select {
		case <-ctx.Done():
			return <-errc
		case upd := <-updates:
			d.publish(Event{Type: "bar", Bar: &upd})
			d.publishPortfolio()
		}
	}
}

func (d *Desk) publishPortfolio() {
	v := d.Valuation()
	metrics.PortfolioValue.Set(v.TotalValue)
	d.publish(Event{Type: "portfolio", Portfolio: &v})
}

func (d *Desk) publish(evt Event) {
	select {
	case d.events <- evt:
	default:
	}
}
