package dataflows

import (
	"context"
	"errors"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

// LongportClient is an optional secondary price source, used when Yahoo has
// no data for a symbol and Longport credentials are configured.
type LongportClient struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportClient(cfg *Config) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{
		quoteCtx: quoteContext,
	}, nil
}

// GetQuote derives a price snapshot from the two most recent daily candles.
func (lpc *LongportClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if lpc == nil || lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}

	sticks, err := lpc.quoteCtx.Candlesticks(ctx, symbol, quote.PeriodDay, 2, quote.AdjustTypeNo)
	if err != nil {
		return nil, err
	}
	if len(sticks) == 0 {
		return nil, errors.New("no candlesticks returned")
	}

	last := sticks[len(sticks)-1]
	lastClose, _ := last.Close.Float64()
	result := &Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(lastClose),
		Timestamp: time.Unix(last.Timestamp, 0),
	}
	if len(sticks) >= 2 {
		prevClose, _ := sticks[len(sticks)-2].Close.Float64()
		result.PreviousClose = decimal.NewFromFloat(prevClose)
		result.HasPrevious = prevClose != 0
	}
	return result, nil
}
