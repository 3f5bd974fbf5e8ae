package dataflows

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// YahooClient fetches quotes through finance-go and resolves company names
// to symbols through Yahoo's public search API.
type YahooClient struct {
	search *resty.Client
	cache  *CacheManager
}

func NewYahooClient(config *Config) *YahooClient {
	cacheDir := filepath.Join(config.DataCacheDir, "yahoo")
	cache := NewCacheManager(cacheDir, 10*time.Minute, config.CacheEnabled)

	search := resty.New()
	search.SetBaseURL("https://query1.finance.yahoo.com")
	search.SetTimeout(10 * time.Second)

	return &YahooClient{
		search: search,
		cache:  cache,
	}
}

// GetQuote gets the current price snapshot for a symbol.
func (yc *YahooClient) GetQuote(symbol string) (*Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached Quote
	if yc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *Quote
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote returned for %s", symbol)
		}

		result = &Quote{
			Symbol:        symbol,
			ShortName:     q.ShortName,
			Price:         decimal.NewFromFloat(q.RegularMarketPrice),
			PreviousClose: decimal.NewFromFloat(q.RegularMarketPreviousClose),
			HasPrevious:   q.RegularMarketPreviousClose != 0,
			Timestamp:     time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "quote", symbol, result)

	return result, nil
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
	} `json:"quotes"`
}

// LookupSymbol converts a company name (e.g. "Apple") to its primary ticker
// ("AAPL"). Returns "" when nothing obvious is found.
func (yc *YahooClient) LookupSymbol(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	var cached string
	if yc.cache.Get("yahoo", "search", name, &cached) {
		return cached
	}

	resp, err := yc.search.R().
		SetQueryParams(map[string]string{
			"q":           name,
			"quotesCount": "1",
			"newsCount":   "0",
		}).
		SetResult(&yahooSearchResponse{}).
		Get("/v1/finance/search")
	if err != nil || resp.StatusCode() != 200 {
		return ""
	}

	search, ok := resp.Result().(*yahooSearchResponse)
	if !ok || len(search.Quotes) == 0 {
		return ""
	}

	symbol := search.Quotes[0].Symbol
	yc.cache.Set("yahoo", "search", name, symbol)

	return symbol
}

// GetIndexQuote fetches a quote for an index symbol such as ^GSPC. Index
// symbols bypass the stricter ticker validation.
func (yc *YahooClient) GetIndexQuote(symbol string) (*Quote, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, fmt.Errorf("index symbol cannot be empty")
	}

	var result *Quote
	err := WithRetry(DefaultRetryConfig(), func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get index quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote returned for %s", symbol)
		}

		result = &Quote{
			Symbol:        symbol,
			ShortName:     q.ShortName,
			Price:         decimal.NewFromFloat(q.RegularMarketPrice),
			PreviousClose: decimal.NewFromFloat(q.RegularMarketPreviousClose),
			HasPrevious:   q.RegularMarketPreviousClose != 0,
			Timestamp:     time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
