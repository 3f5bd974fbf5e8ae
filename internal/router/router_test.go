package router

import (
	"errors"
	"strings"
	"testing"
)

// recorder captures which handlers ran and with what identifiers.
type recorder struct {
	calls []string
}

func (r *recorder) handler(name, reply string) Handler {
	return func(identifier string) (string, error) {
		r.calls = append(r.calls, name+"("+identifier+")")
		return reply, nil
	}
}

func newTestRouter(rec *recorder) *Router {
	return New(Handlers{
		Price:      rec.handler("price", "price-answer"),
		News:       rec.handler("news", "news-answer"),
		Financials: rec.handler("financials", "financials-answer"),
		Market:     rec.handler("market", "market-answer"),
		Fallback:   rec.handler("fallback", "fallback-answer"),
	})
}

func TestBareTickerRoutesToPrice(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	got := r.Route("AAPL")

	if got != "price-answer" {
		t.Fatalf("expected unlabeled price answer, got %q", got)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "price(AAPL)" {
		t.Fatalf("expected only price(AAPL), got %v", rec.calls)
	}
}

func TestTickerPassedAsHandlerArgument(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	r.Route("what is the price of MSFT today")

	if len(rec.calls) != 1 || rec.calls[0] != "price(MSFT)" {
		t.Fatalf("expected price(MSFT), got %v", rec.calls)
	}
}

func TestCompoundQuerySplitsAndRoutesSegments(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	got := r.Route("AAPL price and latest news")

	parts := strings.Split(got, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("expected two blank-line-separated parts, got %d: %q", len(parts), got)
	}
	if parts[0] != "price-answer" || parts[1] != "news-answer" {
		t.Fatalf("unexpected parts: %v", parts)
	}
	want := []string{"price(AAPL)", "news(latest news)"}
	if len(rec.calls) != 2 || rec.calls[0] != want[0] || rec.calls[1] != want[1] {
		t.Fatalf("expected calls %v, got %v", want, rec.calls)
	}
}

func TestNewsSuppressesMarket(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	got := r.Route("market news today")

	if got != "news-answer" {
		t.Fatalf("expected unlabeled news answer, got %q", got)
	}
	for _, call := range rec.calls {
		if strings.HasPrefix(call, "market(") {
			t.Fatalf("market handler should have been suppressed, calls: %v", rec.calls)
		}
	}
}

func TestNoMatchRoutesToFallback(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	got := r.Route("what is a dividend")

	if got != "fallback-answer" {
		t.Fatalf("expected fallback answer, got %q", got)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "fallback(what is a dividend)" {
		t.Fatalf("expected only the fallback, got %v", rec.calls)
	}
}

func TestMultiIntentResponseIsLabeledInFixedOrder(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	// financial keyword appears before price keyword, labels must not follow
	// query order
	got := r.Route("TSLA earnings report plus the current price")

	want := "**Price:** price-answer\n\n**Financials:** financials-answer"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLabelsStayInLockStepWhenMarketSuppressed(t *testing.T) {
	rec := &recorder{}
	r := newTestRouter(rec)

	got := r.Route("NVDA price with market news")

	want := "**Price:** price-answer\n\n**News:** news-answer"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHandlerFailureAbortsWholeRoute(t *testing.T) {
	rec := &recorder{}
	r := New(Handlers{
		Price: rec.handler("price", "price-answer"),
		News: func(string) (string, error) {
			return "", errors.New("upstream exploded")
		},
		Financials: rec.handler("financials", "financials-answer"),
		Market:     rec.handler("market", "market-answer"),
		Fallback:   rec.handler("fallback", "fallback-answer"),
	})

	got := r.Route("AAPL price and headlines news")
	// second segment fails; its answer must be exactly the failure message
	if !strings.Contains(got, FailureMessage) {
		t.Fatalf("expected failure message in %q", got)
	}

	got = r.Route("GOOG news")
	if got != FailureMessage {
		t.Fatalf("expected exactly the failure message, got %q", got)
	}
}

func TestFailureProducesNoPartialOutput(t *testing.T) {
	r := New(Handlers{
		Price: func(string) (string, error) { return "price-answer", nil },
		News: func(string) (string, error) {
			return "", errors.New("boom")
		},
		Financials: func(string) (string, error) { return "financials-answer", nil },
		Market:     func(string) (string, error) { return "market-answer", nil },
		Fallback:   func(string) (string, error) { return "fallback-answer", nil },
	})

	got := r.Route("AAPL price plus news")
	if got != FailureMessage {
		t.Fatalf("expected only the failure message, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		query string
		want  intents
	}{
		{"what is AAPL trading at", intents{price: true}},
		{"latest headlines", intents{news: true}},
		{"revenue breakdown", intents{financial: true}},
		{"how did the indices do", intents{market: true}},
		{"s&p close", intents{market: true}},
		{"earnings news", intents{news: true, financial: true}},
		{"hello there", intents{}},
	}
	for _, tc := range cases {
		if got := classify(strings.ToLower(tc.query)); got != tc.want {
			t.Errorf("classify(%q) = %+v, want %+v", tc.query, got, tc.want)
		}
	}
}

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"AAPL price", "AAPL"},
		{"price of MSFT and GOOG", "MSFT"},
		{"what is apple trading at", ""},
		{"S&P today", ""},      // not purely alphabetic
		{"AAPL123 move", ""},   // digits disqualify
		{"The DOW now", "DOW"}, // "The" is mixed case, "DOW" wins
	}

	for _, tc := range cases {
		if got := extractTicker(tc.query); got != tc.want {
			t.Errorf("extractTicker(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestSplitCompoundTrimsAndDropsEmpties(t *testing.T) {
	parts := splitCompound("AAPL price and  and latest news", "aapl price and  and latest news")
	if len(parts) != 2 || parts[0] != "AAPL price" || parts[1] != "latest news" {
		t.Fatalf("unexpected parts: %v", parts)
	}
}
