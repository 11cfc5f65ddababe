package portfolio

import (
	"sync"

	"tradesim-go/internal/order"
)

// Blotter stores fills in memory for quick inspection.
type Blotter struct {
	mu    sync.Mutex
	fills []order.Fill
}

// NewBlotter creates an empty blotter optionally pre-sizing storage.
func NewBlotter(capacity int) *Blotter {
	if capacity < 0 {
		capacity = 0
	}
	return &Blotter{fills: make([]order.Fill, 0, capacity)}
}

// Record appends a fill to the blotter.
func (b *Blotter) Record(fill order.Fill) {
	b.mu.Lock()
	b.fills = append(b.fills, fill)
	b.mu.Unlock()
}

// Snapshot returns a copy of the recorded fills.
func (b *Blotter) Snapshot() []order.Fill {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]order.Fill, len(b.fills))
	copy(out, b.fills)
	return out
}

// Reset clears all stored fills.
func (b *Blotter) Reset() {
	b.mu.Lock()
	b.fills = b.fills[:0]
	b.mu.Unlock()
}
