package dataflows

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// GoogleNewsClient scrapes Google News search results. It sits between
// Finnhub and NewsAPI in the news fallback chain and needs no API key.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewGoogleNewsClient(config *Config) *GoogleNewsClient {
	cacheDir := filepath.Join(config.DataCacheDir, "google_news")
	cache := NewCacheManager(cacheDir, 2*time.Hour, config.CacheEnabled)

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; StockChat/1.0)")

	return &GoogleNewsClient{
		client: client,
		cache:  cache,
	}
}

// Search scrapes up to maxResults articles for a query.
func (gc *GoogleNewsClient) Search(query string, maxResults int) ([]*NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	cacheKey := map[string]interface{}{"query": query, "max": maxResults}

	var cached []*NewsArticle
	if gc.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en",
		url.QueryEscape(query))

	var result []*NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := gc.client.R().Get(searchURL)
		if err != nil {
			return fmt.Errorf("fetch Google News: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP error %d when fetching Google News", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("parse Google News HTML: %w", err)
		}

		result = gc.parseArticles(doc)
		if len(result) > maxResults {
			result = result[:maxResults]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	gc.cache.Set("google_news", "search", cacheKey, result)

	return result, nil
}

func (gc *GoogleNewsClient) parseArticles(doc *goquery.Document) []*NewsArticle {
	var articles []*NewsArticle

	doc.Find("article").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, _ := s.Find("a").First().Attr("href")

		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}

		publishedAt := time.Now()
		if datetime, ok := s.Find("time").Attr("datetime"); ok {
			if ts, err := time.Parse(time.RFC3339, datetime); err == nil {
				publishedAt = ts
			}
		} else {
			publishedAt = parseRelativeTime(strings.TrimSpace(s.Find("time").Text()))
		}

		articles = append(articles, &NewsArticle{
			Title:       title,
			URL:         absoluteGoogleURL(href),
			Source:      source,
			PublishedAt: publishedAt,
		})
	})

	return articles
}

func absoluteGoogleURL(href string) string {
	if strings.HasPrefix(href, "./") {
		return "https://news.google.com" + href[1:]
	}
	if strings.HasPrefix(href, "/") {
		return "https://news.google.com" + href
	}
	return href
}

// parseRelativeTime converts strings like "3 hours ago" to a timestamp.
// Unparseable input falls back to now.
func parseRelativeTime(text string) time.Time {
	now := time.Now()
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) < 2 {
		return now
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return now
	}

	switch {
	case strings.HasPrefix(fields[1], "minute"):
		return now.Add(-time.Duration(n) * time.Minute)
	case strings.HasPrefix(fields[1], "hour"):
		return now.Add(-time.Duration(n) * time.Hour)
	case strings.HasPrefix(fields[1], "day"):
		return now.AddDate(0, 0, -n)
	}
	return now
}
