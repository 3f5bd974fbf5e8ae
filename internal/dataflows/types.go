package dataflows

import (
	"time"

	"github.com/dkzhang/stockchat/internal/config"
	"github.com/shopspring/decimal"
)

// Config is an alias for the main application config
type Config = config.Config

// Quote is a point-in-time price snapshot for a symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	ShortName     string          `json:"short_name,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	HasPrevious   bool            `json:"has_previous"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ChangePercent returns the day change in percent and whether it is known.
func (q *Quote) ChangePercent() (float64, bool) {
	if !q.HasPrevious || q.PreviousClose.IsZero() {
		return 0, false
	}
	change, _ := q.Price.Sub(q.PreviousClose).
		Div(q.PreviousClose).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return change, true
}

// NewsArticle is a single headline with provenance.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Fundamentals is the revenue/income summary used by the financials handler.
// Nil amounts mean the upstream metric was absent.
type Fundamentals struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Revenue   *float64 `json:"revenue,omitempty"`
	NetIncome *float64 `json:"net_income,omitempty"`
}

// IndexSnapshot is one major-index entry in the market summary.
type IndexSnapshot struct {
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	Level         decimal.Decimal `json:"level"`
	ChangePercent float64         `json:"change_percent"`
	OK            bool            `json:"ok"`
}
