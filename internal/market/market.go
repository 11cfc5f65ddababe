// Package market standardizes payloads shared between the series generator,
// the portfolio ledger, and the display layers.
package market

// Kind distinguishes the two tradable instrument classes.
type Kind string

const (
	// KindStock marks an equity instrument.
	KindStock Kind = "stock"
	// KindCrypto marks a cryptocurrency instrument.
	KindCrypto Kind = "crypto"
)

// Asset is static reference data for a tradable instrument. Immutable within
// a session; refreshed externally.
type Asset struct {
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Name          string  `json:"name" yaml:"name"`
	Price         float64 `json:"price" yaml:"price"`
	Change        float64 `json:"change" yaml:"change"`
	ChangePercent float64 `json:"changePercent" yaml:"change_percent"`
	Volume        float64 `json:"volume" yaml:"volume"`
	Kind          Kind    `json:"kind" yaml:"kind"`
}

// Bar is a single OHLC candlestick. Time is milliseconds since epoch so chart
// frontends can consume it directly. high >= max(open, close) and
// low <= min(open, close) hold for every bar produced in this repo.
type Bar struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Quotes builds a symbol-to-price map from reference data, the shape the
// ledger's valuation consumes.
func Quotes(assets []Asset) map[string]float64 {
	quotes := make(map[string]float64, len(assets))
	for _, a := range assets {
		quotes[a.Symbol] = a.Price
	}
	return quotes
}
