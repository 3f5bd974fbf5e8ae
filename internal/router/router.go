// Package router decides which capability handlers answer a free-text
// financial question and merges their partial answers into one response.
package router

import (
	"log"
	"strings"
	"unicode"
)

// FailureMessage is the only text a caller sees when a handler fails.
// The underlying error is logged, never exposed.
const FailureMessage = "Sorry, I hit a problem while processing that."

// Handler answers one category of question for a ticker or raw query.
type Handler func(identifier string) (string, error)

// Handlers are the injected capabilities behind the router. Fallback is the
// knowledge-base lookup used when nothing else matches.
type Handlers struct {
	Price      Handler
	News       Handler
	Financials Handler
	Market     Handler
	Fallback   Handler
}

type Router struct {
	handlers Handlers
}

func New(handlers Handlers) *Router {
	return &Router{handlers: handlers}
}

// intents is the boolean classification of a query. Flags are not mutually
// exclusive.
type intents struct {
	price     bool
	news      bool
	financial bool
	market    bool
}

func (in intents) any() bool {
	return in.price || in.news || in.financial || in.market
}

// intentTriggers maps each flag to the substrings that set it, matched
// case-insensitively. A declarative table so the rule set can be swapped for
// a real classifier without touching the dispatch logic.
var intentTriggers = []struct {
	set      func(*intents)
	triggers []string
}{
	{func(in *intents) { in.price = true }, []string{"price", "quote", "trading at"}},
	{func(in *intents) { in.news = true }, []string{"news", "headline"}},
	{func(in *intents) { in.financial = true }, []string{"earnings", "financial", "revenue"}},
	{func(in *intents) { in.market = true }, []string{"market", "index", "indices", "dow", "nasdaq", "s&p"}},
}

func classify(lowered string) intents {
	var in intents
	for _, rule := range intentTriggers {
		for _, trigger := range rule.triggers {
			if strings.Contains(lowered, trigger) {
				rule.set(&in)
				break
			}
		}
	}
	return in
}

// extractTicker returns the first whitespace-separated token of the
// original-case query that is purely alphabetic and fully uppercase.
func extractTicker(query string) string {
	for _, token := range strings.Fields(query) {
		if isUpperAlpha(token) {
			return token
		}
	}
	return ""
}

func isUpperAlpha(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// splitCompound splits a query on the literal " and " separator, keeping the
// original case of each segment. Matching is done on the lowercased text;
// splitting "Johnson and Johnson" apart is a known limitation of the literal
// separator.
func splitCompound(query, lowered string) []string {
	if len(lowered) != len(query) {
		// Lowercasing changed byte offsets (non-ASCII); split the lowered
		// text directly rather than mis-slice the original.
		query = lowered
	}

	const sep = " and "
	var parts []string
	for {
		i := strings.Index(strings.ToLower(query), sep)
		if i < 0 {
			break
		}
		if p := strings.TrimSpace(query[:i]); p != "" {
			parts = append(parts, p)
		}
		query = query[i+len(sep):]
	}
	if p := strings.TrimSpace(query); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// labeled pairs a capability label with its handler response, in invocation
// order, so producing and labeling stay in lock-step.
type labeled struct {
	label string
	text  string
}

// Route classifies a question, dispatches it to the matching handlers, and
// merges the partial answers.
func (r *Router) Route(query string) string {
	lowered := strings.ToLower(query)

	// Multi-part questions like "AAPL price and latest news" are routed
	// segment by segment, before any classification.
	if strings.Contains(lowered, " and ") {
		parts := splitCompound(query, lowered)
		answers := make([]string, 0, len(parts))
		for _, part := range parts {
			answers = append(answers, r.Route(part))
		}
		return strings.Join(answers, "\n\n")
	}

	in := classify(lowered)
	ticker := extractTicker(query)

	// A bare ticker resolves to a price lookup.
	if ticker != "" && !in.any() {
		in.price = true
	}

	arg := query
	if ticker != "" {
		arg = ticker
	}

	var responses []labeled
	invoke := func(label string, h Handler, identifier string) bool {
		text, err := h(identifier)
		if err != nil {
			log.Printf("router: %s handler failed: %v", strings.ToLower(label), err)
			return false
		}
		responses = append(responses, labeled{label: label, text: text})
		return true
	}

	if in.price {
		if !invoke("Price", r.handlers.Price, arg) {
			return FailureMessage
		}
	}
	if in.news {
		if !invoke("News", r.handlers.News, arg) {
			return FailureMessage
		}
	}
	if in.financial {
		if !invoke("Financials", r.handlers.Financials, arg) {
			return FailureMessage
		}
	}
	// Market is redundant when news already covers the query ("market news").
	if in.market && !in.news {
		if !invoke("Market", r.handlers.Market, query) {
			return FailureMessage
		}
	}
	if len(responses) == 0 {
		if !invoke("Fallback", r.handlers.Fallback, query) {
			return FailureMessage
		}
	}

	if len(responses) == 1 {
		return responses[0].text
	}

	out := make([]string, 0, len(responses))
	for _, resp := range responses {
		out = append(out, "**"+resp.label+":** "+resp.text)
	}
	return strings.Join(out, "\n\n")
}
