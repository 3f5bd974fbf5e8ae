package dataflows

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewFinnhubClient(config *Config) *FinnhubClient {
	cacheDir := filepath.Join(config.DataCacheDir, "finnhub")
	cache := NewCacheManager(cacheDir, 6*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  cache,
		apiKey: config.FinnhubAPIKey,
	}
}

// Configured reports whether an API key is available.
func (fc *FinnhubClient) Configured() bool {
	return fc.apiKey != ""
}

type finnhubProfile struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

type finnhubMetrics struct {
	Metric map[string]interface{} `json:"metric"`
}

type finnhubNewsItem struct {
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// GetFundamentals returns the revenue/net-income summary for a symbol.
func (fc *FinnhubClient) GetFundamentals(symbol string) (*Fundamentals, error) {
	if !fc.Configured() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached Fundamentals
	if fc.cache.Get("finnhub", "fundamentals", symbol, &cached) {
		return &cached, nil
	}

	var result *Fundamentals
	err := WithRetry(DefaultRetryConfig(), func() error {
		profileResp, err := fc.client.R().
			SetQueryParams(map[string]string{"symbol": symbol, "token": fc.apiKey}).
			Get("/stock/profile2")
		if err != nil {
			return fmt.Errorf("fetch profile for %s: %w", symbol, err)
		}
		if profileResp.StatusCode() != 200 {
			return fmt.Errorf("profile API error %d: %s", profileResp.StatusCode(), profileResp.String())
		}

		var profile finnhubProfile
		if err := json.Unmarshal(profileResp.Body(), &profile); err != nil {
			return fmt.Errorf("parse profile response: %w", err)
		}

		metricResp, err := fc.client.R().
			SetQueryParams(map[string]string{"symbol": symbol, "metric": "all", "token": fc.apiKey}).
			Get("/stock/metric")
		if err != nil {
			return fmt.Errorf("fetch metrics for %s: %w", symbol, err)
		}
		if metricResp.StatusCode() != 200 {
			return fmt.Errorf("metric API error %d: %s", metricResp.StatusCode(), metricResp.String())
		}

		var metrics finnhubMetrics
		if err := json.Unmarshal(metricResp.Body(), &metrics); err != nil {
			return fmt.Errorf("parse metric response: %w", err)
		}

		name := profile.Name
		if name == "" {
			name = symbol
		}
		result = &Fundamentals{
			Symbol:    symbol,
			Name:      name,
			Revenue:   metricAmount(metrics.Metric, "revenueTTM", "revenuePerShareTTM"),
			NetIncome: metricAmount(metrics.Metric, "netIncomeCommonTTM", "netProfitTTM"),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "fundamentals", symbol, result)

	return result, nil
}

// metricAmount extracts the first present metric, scaled from Finnhub's
// millions to absolute dollars.
func metricAmount(metrics map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		raw, ok := metrics[key]
		if !ok {
			continue
		}
		val, ok := raw.(float64)
		if !ok {
			continue
		}
		amount := val * 1e6
		return &amount
	}
	return nil
}

// GetCompanyNews gets recent news articles for a specific company.
func (fc *FinnhubClient) GetCompanyNews(symbol string, from, to time.Time) ([]*NewsArticle, error) {
	if !fc.Configured() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}

	var cached []*NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var result []*NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/company-news")
		if err != nil {
			return fmt.Errorf("fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("news API error %d: %s", resp.StatusCode(), resp.String())
		}

		var items []finnhubNewsItem
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return fmt.Errorf("parse news response: %w", err)
		}

		result = make([]*NewsArticle, 0, len(items))
		for _, item := range items {
			if item.Headline == "" {
				continue
			}
			source := item.Source
			if source == "" {
				source = "Finnhub"
			}
			result = append(result, &NewsArticle{
				Title:       item.Headline,
				URL:         item.URL,
				Source:      source,
				PublishedAt: time.Unix(item.DateTime, 0).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "company_news", cacheKey, result)

	return result, nil
}
