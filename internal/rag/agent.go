// Package rag is the knowledge-base fallback: when no capability matches a
// query, the router hands it here. Context passages come from an external
// retrieval service and the answer is synthesized by a chat model. The
// fallback is total: every internal failure degrades to an apology sentence,
// never an error.
package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"

	"github.com/dkzhang/stockchat/internal/config"
)

// Apology answers for the two degraded outcomes: the knowledge base holds
// nothing on the topic, or retrieval/generation itself failed.
const (
	AnswerNoInformation = "I'm sorry, I don't have information on that topic."
	AnswerUnavailable   = "I'm sorry, I cannot find information on that."
)

const systemPrompt = `You are a financial knowledge-base assistant. Answer the
user's question using only the provided context passages. If the context does
not contain the answer, say you do not have information on that topic.`

// Agent answers free-text questions against the knowledge base.
type Agent struct {
	retrieval *resty.Client
	model     *openai.ChatModel
}

func NewAgent(ctx context.Context, cfg *config.Config) *Agent {
	a := &Agent{}

	if cfg.RAGServiceURL != "" {
		client := resty.New()
		client.SetBaseURL(cfg.RAGServiceURL)
		client.SetTimeout(15 * time.Second)
		a.retrieval = client
	}

	if cfg.OpenAIAPIKey != "" {
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			log.Printf("rag: chat model unavailable: %v", err)
		} else {
			a.model = chatModel
		}
	}

	return a
}

type retrieveRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type retrieveResponse struct {
	Passages []struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	} `json:"passages"`
}

func (a *Agent) retrieve(query string) []string {
	if a.retrieval == nil {
		return nil
	}

	resp, err := a.retrieval.R().
		SetBody(retrieveRequest{Query: query, K: 3}).
		SetResult(&retrieveResponse{}).
		Post("/query")
	if err != nil {
		log.Printf("rag: retrieval failed: %v", err)
		return nil
	}
	if resp.StatusCode() != 200 {
		log.Printf("rag: retrieval returned status %d", resp.StatusCode())
		return nil
	}

	result, ok := resp.Result().(*retrieveResponse)
	if !ok {
		return nil
	}

	passages := make([]string, 0, len(result.Passages))
	for _, p := range result.Passages {
		if strings.TrimSpace(p.Text) != "" {
			passages = append(passages, p.Text)
		}
	}
	return passages
}

// Answer queries the knowledge base with semantic search plus LLM synthesis.
func (a *Agent) Answer(query string) (string, error) {
	if a.model == nil {
		log.Printf("rag: no chat model configured, cannot answer %q", query)
		return AnswerUnavailable, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
	}
	if passages := a.retrieve(query); len(passages) > 0 {
		messages = append(messages,
			schema.UserMessage(fmt.Sprintf("Context:\n%s", strings.Join(passages, "\n---\n"))))
	}
	messages = append(messages, schema.UserMessage(query))

	reply, err := a.model.Generate(ctx, messages)
	if err != nil {
		log.Printf("rag: generation failed: %v", err)
		return AnswerUnavailable, nil
	}

	answer := strings.TrimSpace(reply.Content)
	if answer == "" {
		return AnswerNoInformation, nil
	}
	return answer, nil
}
