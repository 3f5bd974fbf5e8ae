// Package handlers implements the capability handlers behind the query
// router: price, news, financials, and market summary. Each handler takes a
// ticker or free-text identifier and returns a formatted sentence. Ordinary
// "no data" conditions are encoded in the returned string; an error return is
// reserved for unexpected failures.
package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dkzhang/stockchat/internal/config"
	"github.com/dkzhang/stockchat/internal/dataflows"
)

const newsLimit = 3

// Narrow views of the dataflows clients, one per upstream. Service depends
// on these so a single source can be swapped out.
type quoteSource interface {
	GetQuote(symbol string) (*dataflows.Quote, error)
	GetIndexQuote(symbol string) (*dataflows.Quote, error)
	LookupSymbol(name string) string
}

type companySource interface {
	Configured() bool
	GetFundamentals(symbol string) (*dataflows.Fundamentals, error)
	GetCompanyNews(symbol string, from, to time.Time) ([]*dataflows.NewsArticle, error)
}

type newsScraper interface {
	Search(query string, maxResults int) ([]*dataflows.NewsArticle, error)
}

type keywordNewsSource interface {
	Configured() bool
	SearchEverything(query string, limit int) ([]*dataflows.NewsArticle, error)
}

type brokerQuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*dataflows.Quote, error)
}

// Service bundles the data clients behind the four capabilities.
type Service struct {
	yahoo    quoteSource
	finnhub  companySource
	google   newsScraper
	newsapi  keywordNewsSource
	longport brokerQuoteSource
}

func NewService(cfg *config.Config) *Service {
	s := &Service{
		yahoo:   dataflows.NewYahooClient(cfg),
		finnhub: dataflows.NewFinnhubClient(cfg),
		google:  dataflows.NewGoogleNewsClient(cfg),
		newsapi: dataflows.NewNewsAPIClient(cfg),
	}

	longport, err := dataflows.NewLongportClient(cfg)
	if err != nil {
		log.Printf("handlers: longport disabled: %v", err)
	} else {
		s.longport = longport
	}

	return s
}

// GetStockPrice returns the current price and daily change for a ticker.
func (s *Service) GetStockPrice(ticker string) (string, error) {
	q, err := s.yahoo.GetQuote(ticker)
	if err != nil && s.longport != nil {
		log.Printf("handlers: yahoo quote failed for %s, trying longport: %v", ticker, err)
		q, err = s.longport.GetQuote(context.Background(), dataflows.NormalizeSymbol(ticker))
	}
	if err != nil || q == nil || q.Price.IsZero() {
		return fmt.Sprintf("Price data for %s is not available.", ticker), nil
	}

	price, _ := q.Price.Float64()
	out := fmt.Sprintf("The current price of %s is $%s", q.Symbol, humanize.CommafWithDigits(price, 2))

	if change, ok := q.ChangePercent(); ok {
		sign := ""
		if change >= 0 {
			sign = "+"
		}
		out += fmt.Sprintf(" (%s%.2f%%)", sign, change)
	}

	return out + ".", nil
}

// GetFinancialStatements returns a revenue and net-income summary.
func (s *Service) GetFinancialStatements(ticker string) (string, error) {
	f, err := s.finnhub.GetFundamentals(ticker)
	if err != nil || f == nil {
		if err != nil {
			log.Printf("handlers: fundamentals unavailable for %s: %v", ticker, err)
		}
		return fmt.Sprintf("Financial information for %s is not available.", ticker), nil
	}

	return fmt.Sprintf("%s latest financials – Revenue: %s, Net income: %s (last annual/TTM).",
		f.Name, formatAmount(f.Revenue), formatAmount(f.NetIncome)), nil
}

// formatAmount humanizes a dollar amount: billions, millions, or plain.
func formatAmount(amount *float64) string {
	if amount == nil {
		return "N/A"
	}
	v := *amount
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2f B", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2f M", v/1e6)
	default:
		return "$" + humanize.CommafWithDigits(v, 0)
	}
}

// GetRecentNews returns up to three fresh headlines for a ticker or company
// name. The fallback chain is Finnhub (ticker as given, then a symbol looked
// up from the name), then a Google News scrape, then NewsAPI.
func (s *Service) GetRecentNews(query string) (string, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)

	if s.finnhub.Configured() {
		for _, candidate := range []string{query, s.yahoo.LookupSymbol(query)} {
			if strings.TrimSpace(candidate) == "" {
				continue
			}
			articles, err := s.finnhub.GetCompanyNews(candidate, from, now)
			if err != nil {
				log.Printf("handlers: finnhub news failed for %s: %v", candidate, err)
				continue
			}
			if len(articles) > 0 {
				return formatNews(dataflows.NormalizeSymbol(candidate), articles), nil
			}
		}
	}

	if articles, err := s.google.Search(query, newsLimit); err == nil && len(articles) > 0 {
		return formatNews(query, articles), nil
	} else if err != nil {
		log.Printf("handlers: google news failed for %q: %v", query, err)
	}

	if s.newsapi.Configured() {
		if articles, err := s.newsapi.SearchEverything(query, newsLimit); err == nil && len(articles) > 0 {
			return formatNews(query, articles), nil
		} else if err != nil {
			log.Printf("handlers: newsapi failed for %q: %v", query, err)
		}
	}

	return fmt.Sprintf("No recent news found for %s.", query), nil
}

func formatNews(subject string, articles []*dataflows.NewsArticle) string {
	if len(articles) > newsLimit {
		articles = articles[:newsLimit]
	}
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)",
			a.Title, a.Source, a.PublishedAt.Format("2006-01-02")))
	}
	return fmt.Sprintf("Recent news for %s:\n%s", subject, strings.Join(lines, "\n"))
}

var marketIndices = []struct {
	Name   string
	Symbol string
}{
	{"S&P 500", "^GSPC"},
	{"Dow Jones", "^DJI"},
	{"Nasdaq", "^IXIC"},
}

// GetMarketSummary returns a snapshot of the major US indices with an
// up/down sentiment tally. The argument is ignored; the router passes the
// raw query through for uniformity.
func (s *Service) GetMarketSummary(string) (string, error) {
	snapshots := make([]dataflows.IndexSnapshot, 0, len(marketIndices))
	for _, idx := range marketIndices {
		snap := dataflows.IndexSnapshot{Name: idx.Name, Symbol: idx.Symbol}
		q, err := s.yahoo.GetIndexQuote(idx.Symbol)
		if err == nil && q != nil && !q.Price.IsZero() {
			snap.Level = q.Price
			if change, ok := q.ChangePercent(); ok {
				snap.ChangePercent = change
			}
			snap.OK = true
		} else if err != nil {
			log.Printf("handlers: index quote failed for %s: %v", idx.Symbol, err)
		}
		snapshots = append(snapshots, snap)
	}
	return FormatMarketSummary(snapshots), nil
}

// FormatMarketSummary renders index snapshots into the summary sentence.
func FormatMarketSummary(snapshots []dataflows.IndexSnapshot) string {
	ups, downs := 0, 0
	parts := make([]string, 0, len(snapshots))

	for _, snap := range snapshots {
		if !snap.OK {
			parts = append(parts, fmt.Sprintf("%s: N/A", snap.Name))
			continue
		}
		if snap.ChangePercent < 0 {
			downs++
		} else {
			ups++
		}
		sign := ""
		if snap.ChangePercent >= 0 {
			sign = "+"
		}
		level, _ := snap.Level.Float64()
		parts = append(parts, fmt.Sprintf("%s: %s (%s%.2f%%)",
			snap.Name, humanize.CommafWithDigits(level, 0), sign, snap.ChangePercent))
	}

	sentiment := "mixed"
	if ups > downs {
		sentiment = "positive"
	} else if downs > ups {
		sentiment = "negative"
	}

	return fmt.Sprintf("Market Summary – %s. Overall sentiment: %s.",
		strings.Join(parts, "; "), sentiment)
}
