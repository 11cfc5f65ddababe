package series

import (
	"context"
	"sync"
	"time"

	"tradesim-go/internal/market"
	"tradesim-go/internal/metrics"
)

// Update carries the single bar that changed on a tick so a display can
// update incrementally without re-rendering the whole series.
type Update struct {
	Symbol   string     `json:"symbol"`
	Bar      market.Bar `json:"bar"`
	Appended bool       `json:"appended"`
}

// Stream holds the live series for the currently selected asset. Reset swaps
// in a freshly generated history when the selection changes; Tick advances
// the walk by one step. All access is serialized by the internal mutex.
type Stream struct {
	gen          *Generator
	tickInterval time.Duration
	barInterval  time.Duration
	historyBars  int
	clock        func() time.Time

	mu     sync.Mutex
	symbol string
	bars   []market.Bar
}

// Option configures Stream construction parameters.
type Option func(*Stream)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Stream) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStream constructs a stream that ticks every tickInterval and opens a new
// bar once barInterval has elapsed since the live bar opened.
func NewStream(gen *Generator, tickInterval, barInterval time.Duration, historyBars int, opts ...Option) *Stream {
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	if barInterval <= 0 {
		barInterval = time.Minute
	}
	if historyBars < 1 {
		historyBars = 1
	}
	s := &Stream{
		gen:          gen,
		tickInterval: tickInterval,
		barInterval:  barInterval,
		historyBars:  historyBars,
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset discards the prior series and generates fresh history for the given
// symbol from its base price.
func (s *Stream) Reset(symbol string, basePrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbol = symbol
	s.bars = s.gen.Initialize(basePrice, s.historyBars, s.barInterval, s.clock())
}

// Symbol returns the symbol the stream currently tracks.
func (s *Stream) Symbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

// Bars returns a copy of the current series.
func (s *Stream) Bars() []market.Bar {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]market.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// LastClose reports the close of the live bar, false when uninitialized.
func (s *Stream) LastClose() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bars) == 0 {
		return 0, false
	}
	return s.bars[len(s.bars)-1].Close, true
}

// Tick advances the series by one step and reports the changed bar. The
// second return is false while the stream has no series to advance.
func (s *Stream) Tick() (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bars) == 0 {
		return Update{}, false
	}
	bars, changed, appended := s.gen.ExtendOrAmend(s.bars, s.clock(), s.barInterval)
	s.bars = bars
	return Update{Symbol: s.symbol, Bar: changed, Appended: appended}, true
}

// Run pushes updates onto the provided channel until the context is
// canceled. Stopping the stream ceases further amendments and appends; it
// never touches anything outside the series.
func (s *Stream) Run(ctx context.Context, out chan<- Update) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			upd, ok := s.Tick()
			if !ok {
				continue
			}
			select {
			case out <- upd:
				metrics.TicksTotal.WithLabelValues(upd.Symbol).Inc()
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
