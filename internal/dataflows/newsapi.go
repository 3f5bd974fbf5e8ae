package dataflows

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// NewsAPIClient searches headlines by keyword through newsapi.org. It is the
// last link in the news fallback chain and only active when a key is set.
type NewsAPIClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewNewsAPIClient(config *Config) *NewsAPIClient {
	cacheDir := filepath.Join(config.DataCacheDir, "newsapi")
	cache := NewCacheManager(cacheDir, 2*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://newsapi.org/v2")
	client.SetTimeout(15 * time.Second)

	return &NewsAPIClient{
		client: client,
		cache:  cache,
		apiKey: config.NewsAPIKey,
	}
}

func (nc *NewsAPIClient) Configured() bool {
	return nc.apiKey != ""
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// SearchEverything returns up to limit headlines matching the query, newest
// first.
func (nc *NewsAPIClient) SearchEverything(query string, limit int) ([]*NewsArticle, error) {
	if !nc.Configured() {
		return nil, fmt.Errorf("NewsAPI key not configured")
	}
	if limit <= 0 {
		limit = 3
	}

	cacheKey := map[string]interface{}{"query": query, "limit": limit}

	var cached []*NewsArticle
	if nc.cache.Get("newsapi", "everything", cacheKey, &cached) {
		return cached, nil
	}

	var result []*NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := nc.client.R().
			SetQueryParams(map[string]string{
				"q":        query,
				"language": "en",
				"sortBy":   "publishedAt",
				"pageSize": strconv.Itoa(limit),
				"apiKey":   nc.apiKey,
			}).
			Get("/everything")
		if err != nil {
			return fmt.Errorf("fetch NewsAPI headlines: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("NewsAPI error %d: %s", resp.StatusCode(), resp.String())
		}

		var payload newsAPIResponse
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("parse NewsAPI response: %w", err)
		}

		result = make([]*NewsArticle, 0, len(payload.Articles))
		for _, a := range payload.Articles {
			if a.Title == "" {
				continue
			}
			source := a.Source.Name
			if source == "" {
				source = "NewsAPI"
			}
			result = append(result, &NewsArticle{
				Title:       a.Title,
				URL:         a.URL,
				Source:      source,
				PublishedAt: a.PublishedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	nc.cache.Set("newsapi", "everything", cacheKey, result)

	return result, nil
}
