// Package chat orchestrates one user interaction: answer-cache lookup,
// routing, and conversation-log persistence.
package chat

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/dkzhang/stockchat/internal/cache"
	"github.com/dkzhang/stockchat/internal/rag"
	"github.com/dkzhang/stockchat/internal/router"
	"github.com/dkzhang/stockchat/internal/storage/sqlite"
)

type Service struct {
	store        *sqlite.Store
	answers      *cache.AnswerCache
	router       *router.Router
	historyLimit int
}

func NewService(store *sqlite.Store, answers *cache.AnswerCache, r *router.Router, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &Service{
		store:        store,
		answers:      answers,
		router:       r,
		historyLimit: historyLimit,
	}
}

// NewSession returns a fresh session identifier stamped on chat rows.
func (s *Service) NewSession() string {
	return uuid.NewString()
}

// Ask answers a user's question. Cached answers are reused per owner and
// normalized query. Cache and log failures never fail the response.
func (s *Service) Ask(ctx context.Context, username, sessionID, query string) string {
	answer, hit := s.answers.Get(username, query)
	if !hit {
		answer = s.router.Route(query)
		if !degraded(answer) {
			s.answers.Set(username, query, answer)
		}
	}

	s.append(ctx, username, sessionID, sqlite.RoleUser, query)
	s.append(ctx, username, sessionID, sqlite.RoleAssistant, answer)

	return answer
}

// degraded reports whether an answer is a failure apology. Caching one would
// pin a transient outage on the query for the full TTL.
func degraded(answer string) bool {
	switch answer {
	case router.FailureMessage, rag.AnswerNoInformation, rag.AnswerUnavailable:
		return true
	}
	return false
}

func (s *Service) append(ctx context.Context, username, sessionID, role, text string) {
	err := s.store.AppendMessage(ctx, sqlite.ChatMessage{
		Username:  username,
		SessionID: sessionID,
		Role:      role,
		Text:      text,
	})
	if err != nil {
		log.Printf("chat: persist %s message: %v", role, err)
	}
}

// History returns the user's conversation log in insertion order.
func (s *Service) History(ctx context.Context, username string) ([]sqlite.ChatMessage, error) {
	return s.store.RecentMessages(ctx, username, s.historyLimit)
}
