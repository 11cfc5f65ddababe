// Package portfolio is the single authority for cash and holdings: buy/sell
// semantics, cost basis, and mark-to-market valuation all live here.
package portfolio

import (
	"errors"
	"fmt"
	"sync"

	"tradesim-go/internal/market"
	"tradesim-go/internal/order"
)

// Rejection reasons returned by PlaceOrder. All are recoverable: a rejected
// order leaves the ledger untouched and the caller reprompts.
var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientFunds    = errors.New("insufficient cash for buy")
	ErrNoPosition           = errors.New("no position for symbol")
	ErrInsufficientHoldings = errors.New("insufficient holdings to sell")
)

// Reason tags a PlaceOrder error for metrics labels and API payloads.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNoPosition):
		return "no_position"
	case errors.Is(err, ErrInsufficientHoldings):
		return "insufficient_holdings"
	default:
		return "internal"
	}
}

const epsilon = 1e-9

// Position is one held asset: quantity, volume-weighted entry price, and the
// instrument class. Amount stays positive while the position exists.
type Position struct {
	Amount       float64     `json:"amount"`
	AveragePrice float64     `json:"averagePrice"`
	Kind         market.Kind `json:"kind"`
}

// Ledger tracks cash and per-symbol positions. All mutation flows through
// PlaceOrder; everything else is a read.
type Ledger struct {
	mu           sync.Mutex
	startingCash float64
	cash         float64
	positions    map[string]Position
}

// NewLedger constructs a ledger holding the starting cash and no positions.
func NewLedger(startingCash float64) *Ledger {
	return &Ledger{
		startingCash: startingCash,
		cash:         startingCash,
		positions:    make(map[string]Position),
	}
}

// StartingCash returns the initial bankroll.
func (l *Ledger) StartingCash() float64 { return l.startingCash }

// PlaceOrder applies a buy or sell of qty units at the supplied quote. The
// quote is the currently displayed price, resolved by the caller; the ledger
// never fetches prices. Orders fill instantly and fully, all-or-nothing.
func (l *Ledger) PlaceOrder(symbol string, kind market.Kind, side order.Side, qty, quote float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := qty * quote

	switch side {
	case order.Buy:
		if cost > l.cash+epsilon {
			return ErrInsufficientFunds
		}
		pos, ok := l.positions[symbol]
		if !ok {
			l.positions[symbol] = Position{Amount: qty, AveragePrice: quote, Kind: kind}
		} else {
			newAmount := pos.Amount + qty
			l.positions[symbol] = Position{
				Amount:       newAmount,
				AveragePrice: (pos.AveragePrice*pos.Amount + cost) / newAmount,
				Kind:         pos.Kind,
			}
		}
		l.cash -= cost

	case order.Sell:
		pos, ok := l.positions[symbol]
		if !ok {
			return ErrNoPosition
		}
		if qty > pos.Amount+epsilon {
			return ErrInsufficientHoldings
		}
		newAmount := pos.Amount - qty
		if newAmount <= epsilon {
			delete(l.positions, symbol)
		} else {
			// Selling does not move the cost basis of the remainder.
			l.positions[symbol] = Position{Amount: newAmount, AveragePrice: pos.AveragePrice, Kind: pos.Kind}
		}
		l.cash += cost

	default:
		return fmt.Errorf("unknown order side %q", side)
	}
	return nil
}

// Cash reports the free cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Position returns the current position for a symbol, false when flat.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[symbol]
	return pos, ok
}

// Positions returns a copy of all open positions keyed by symbol.
func (l *Ledger) Positions() map[string]Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]Position, len(l.positions))
	for sym, pos := range l.positions {
		out[sym] = pos
	}
	return out
}
