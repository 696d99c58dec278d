package models

// LiveQuote is a point-in-time snapshot of a coin's market state.
type LiveQuote struct {
	Coin          string   `json:"coin"`
	Price         float64  `json:"price"`
	PercentChange float64  `json:"percent_change"`
	MarketCap     *float64 `json:"market_cap"`
	Volume24h     float64  `json:"volume_24h"`
}

// MultiQuote aggregates live quotes for several coins; coins whose upstream
// call failed appear in Errors instead of Quotes.
type MultiQuote struct {
	Quotes map[string]LiveQuote `json:"quotes"`
	Errors map[string]string    `json:"errors,omitempty"`
}

// TrendSeries is a compact dates+closes view of a coin's history.
type TrendSeries struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// Mover is one entry in a top-movers ranking.
type Mover struct {
	Coin   string  `json:"coin"`
	Change float64 `json:"change"`
}

// TopMovers ranks the configured coins by 24h percent change.
type TopMovers struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}

// NewsItem is a single headline attached to a coin.
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Published   string `json:"published"`
	Description string `json:"description"`
}
