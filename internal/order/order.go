// Package order defines the order/fill payloads and the submission hook
// sitting between the engine and the ledger.
package order

import (
	"time"

	"github.com/rs/zerolog"

	"tradesim-go/internal/metrics"
)

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a closing order.
	Sell Side = "SELL"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool { return s == Buy || s == Sell }

// Order represents a placement request.
type Order struct {
	Symbol string  `json:"symbol"`
	Side   Side    `json:"side"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
}

// Fill is an executed order. Fills are always instant and full at the quoted
// price, so a fill mirrors its order plus a timestamp.
type Fill struct {
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Qty    float64   `json:"qty"`
	Price  float64   `json:"price"`
	Ts     time.Time `json:"ts"`
}

// Executor logs accepted orders and feeds the order metrics. It runs after
// the ledger has accepted the order, so everything it sees is a fill.
type Executor struct{ log zerolog.Logger }

// NewExecutor wraps a zerolog logger for order submissions.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log} }

// Submit records a filled order.
func (executor *Executor) Submit(fill Fill) {
	metrics.OrdersTotal.WithLabelValues(fill.Symbol, string(fill.Side)).Inc()
	executor.log.Info().
		Str("sym", fill.Symbol).
		Str("side", string(fill.Side)).
		Float64("qty", fill.Qty).
		Float64("px", fill.Price).
		Msg("order filled")
}
