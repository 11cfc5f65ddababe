// Package series produces synthetic OHLC candlestick data with no external
// data source: a seeded random walk for history, plus incremental per-tick
// updates that amend the live bar or open a new one.
package series

import (
	"math"
	"math/rand"
	"time"

	"tradesim-go/internal/market"
)

// Generator owns the random source behind the walk. Inject a seeded source
// for deterministic output.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator builds a generator from a seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewGeneratorFrom builds a generator around an existing random source.
func NewGeneratorFrom(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Initialize produces barCount bars of synthetic history ending at now, one
// bar per interval, ascending by timestamp. Each step moves the close by a
// uniform draw within ±1% of basePrice; wicks extend past the body by an
// independent fraction of the step size, so high >= max(open, close) and
// low <= min(open, close) hold by construction. basePrice must be positive.
func (g *Generator) Initialize(basePrice float64, barCount int, interval time.Duration, now time.Time) []market.Bar {
	if barCount < 1 {
		barCount = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}

	bars := make([]market.Bar, 0, barCount)
	current := basePrice
	for i := barCount; i > 0; i-- {
		movement := (g.rng.Float64() - 0.5) * (basePrice * 0.02)
		wick := math.Abs(movement)

		bar := market.Bar{Time: now.Add(-time.Duration(i) * interval).UnixMilli(), Open: current}
		bar.Close = bar.Open + movement
		bar.High = math.Max(bar.Open, bar.Close) + g.rng.Float64()*wick
		bar.Low = math.Min(bar.Open, bar.Close) - g.rng.Float64()*wick

		current = bar.Close
		bars = append(bars, bar)
	}
	return bars
}

// ExtendOrAmend advances a live series by one tick. The close walks by a
// uniform draw in [-1, +1] (a fixed tick size, independent of price scale).
// When more than barInterval has passed since the last bar opened, a new bar
// is appended at now with open equal to the prior close; otherwise the last
// bar is amended in place, keeping its open and timestamp while high/low
// widen monotonically. Returns the updated slice, the single bar that
// changed, and whether it was appended.
func (g *Generator) ExtendOrAmend(bars []market.Bar, now time.Time, barInterval time.Duration) ([]market.Bar, market.Bar, bool) {
	if len(bars) == 0 {
		return bars, market.Bar{}, false
	}

	last := bars[len(bars)-1]
	movement := g.rng.Float64()*2 - 1

	if now.UnixMilli()-last.Time > barInterval.Milliseconds() {
		bar := market.Bar{
			Time:  now.UnixMilli(),
			Open:  last.Close,
			High:  last.Close + math.Abs(movement),
			Low:   last.Close - math.Abs(movement),
			Close: last.Close + movement,
		}
		bars = append(bars, bar)
		return bars, bar, true
	}

	amended := last
	amended.Close = last.Close + movement
	amended.High = math.Max(last.High, amended.Close)
	amended.Low = math.Min(last.Low, amended.Close)
	bars[len(bars)-1] = amended
	return bars, amended, false
}
