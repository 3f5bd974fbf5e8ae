package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkzhang/stockchat/internal/dataflows"
)

func amount(v float64) *float64 { return &v }

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{amount(391.04e9), "$391.04 B"},
		{amount(-2.5e9), "$-2.50 B"},
		{amount(93.7e6), "$93.70 M"},
		{amount(125000), "$125,000"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.in); got != tc.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatNews(t *testing.T) {
	published := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	articles := []*dataflows.NewsArticle{
		{Title: "Apple unveils something", Source: "Reuters", PublishedAt: published},
		{Title: "Second headline", Source: "Bloomberg", PublishedAt: published},
	}

	got := formatNews("AAPL", articles)

	want := "Recent news for AAPL:\n" +
		"- Apple unveils something (Reuters, 2026-08-30)\n" +
		"- Second headline (Bloomberg, 2026-08-30)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatNewsCapsAtLimit(t *testing.T) {
	published := time.Now()
	var articles []*dataflows.NewsArticle
	for i := 0; i < 10; i++ {
		articles = append(articles, &dataflows.NewsArticle{
			Title: "headline", Source: "src", PublishedAt: published,
		})
	}

	got := formatNews("AAPL", articles)
	if n := strings.Count(got, "- headline"); n != newsLimit {
		t.Fatalf("expected %d headlines, got %d in %q", newsLimit, n, got)
	}
}

func TestFormatMarketSummaryPositive(t *testing.T) {
	snaps := []dataflows.IndexSnapshot{
		{Name: "S&P 500", Symbol: "^GSPC", Level: decimal.NewFromFloat(5632), ChangePercent: 0.41, OK: true},
		{Name: "Dow Jones", Symbol: "^DJI", Level: decimal.NewFromFloat(41175), ChangePercent: -0.12, OK: true},
		{Name: "Nasdaq", Symbol: "^IXIC", Level: decimal.NewFromFloat(17726), ChangePercent: 1.05, OK: true},
	}

	got := FormatMarketSummary(snaps)

	if !strings.HasPrefix(got, "Market Summary – ") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "S&P 500: 5,632 (+0.41%)") {
		t.Fatalf("missing S&P entry: %q", got)
	}
	if !strings.Contains(got, "Dow Jones: 41,175 (-0.12%)") {
		t.Fatalf("missing Dow entry: %q", got)
	}
	if !strings.HasSuffix(got, "Overall sentiment: positive.") {
		t.Fatalf("expected positive sentiment: %q", got)
	}
}

func TestFormatMarketSummaryHandlesMissingIndex(t *testing.T) {
	snaps := []dataflows.IndexSnapshot{
		{Name: "S&P 500", Symbol: "^GSPC", Level: decimal.NewFromFloat(5632), ChangePercent: -0.3, OK: true},
		{Name: "Dow Jones", Symbol: "^DJI"},
		{Name: "Nasdaq", Symbol: "^IXIC", Level: decimal.NewFromFloat(17726), ChangePercent: 0.2, OK: true},
	}

	got := FormatMarketSummary(snaps)

	if !strings.Contains(got, "Dow Jones: N/A") {
		t.Fatalf("expected N/A entry: %q", got)
	}
	if !strings.HasSuffix(got, "Overall sentiment: mixed.") {
		t.Fatalf("one up one down should be mixed: %q", got)
	}
}
