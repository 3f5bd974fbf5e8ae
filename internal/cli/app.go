package cli

import (
	"context"
	"fmt"

	"github.com/dkzhang/stockchat/internal/cache"
	"github.com/dkzhang/stockchat/internal/chat"
	"github.com/dkzhang/stockchat/internal/config"
	"github.com/dkzhang/stockchat/internal/handlers"
	"github.com/dkzhang/stockchat/internal/rag"
	"github.com/dkzhang/stockchat/internal/router"
	"github.com/dkzhang/stockchat/internal/storage/sqlite"
)

// app wires the store, cache, capability handlers, and router together for
// the CLI commands.
type app struct {
	cfg   *config.Config
	store *sqlite.Store
	chat  *chat.Service
}

func newApp(cfg *config.Config) (*app, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}

	capabilities := handlers.NewService(cfg)
	kb := rag.NewAgent(context.Background(), cfg)

	r := router.New(router.Handlers{
		Price:      capabilities.GetStockPrice,
		News:       capabilities.GetRecentNews,
		Financials: capabilities.GetFinancialStatements,
		Market:     capabilities.GetMarketSummary,
		Fallback:   kb.Answer,
	})

	answers := cache.NewAnswerCache(cfg.DataCacheDir, cfg.AnswerCacheTTL, cfg.CacheEnabled)

	return &app{
		cfg:   cfg,
		store: store,
		chat:  chat.NewService(store, answers, r, cfg.HistoryLimit),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
