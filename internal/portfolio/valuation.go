package portfolio

import "tradesim-go/internal/market"

// PositionValue is a single position marked to market. Quoted is false when
// no current quote was available; value and unrealized P&L are zero then so
// a display can flag the row as stale instead of the whole valuation failing.
type PositionValue struct {
	Amount        float64     `json:"amount"`
	AveragePrice  float64     `json:"averagePrice"`
	Kind          market.Kind `json:"kind"`
	Value         float64     `json:"value"`
	UnrealizedPnL float64     `json:"unrealizedPnL"`
	Quoted        bool        `json:"quoted"`
}

// Valuation is a read-only snapshot of the ledger marked against a set of
// current quotes. TotalValue is cash plus the sum of position values.
type Valuation struct {
	Cash       float64                  `json:"cash"`
	TotalValue float64                  `json:"totalValue"`
	Positions  map[string]PositionValue `json:"positions"`
}

// Valuation marks every position against the supplied quotes. It is pure and
// side-effect free, safe to call on every tick.
func (l *Ledger) Valuation(quotes map[string]float64) Valuation {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make(map[string]PositionValue, len(l.positions))
	total := l.cash
	for sym, pos := range l.positions {
		pv := PositionValue{
			Amount:       pos.Amount,
			AveragePrice: pos.AveragePrice,
			Kind:         pos.Kind,
		}
		if quote, ok := quotes[sym]; ok && quote != 0 {
			pv.Value = pos.Amount * quote
			pv.UnrealizedPnL = (quote - pos.AveragePrice) * pos.Amount
			pv.Quoted = true
		}
		positions[sym] = pv
		total += pv.Value
	}

	return Valuation{Cash: l.cash, TotalValue: total, Positions: positions}
}
