package rag

import (
	"context"
	"testing"

	"github.com/dkzhang/stockchat/internal/config"
)

func TestAnswerDegradesWithoutModel(t *testing.T) {
	cfg := &config.Config{} // no OpenAI key, no retrieval service
	agent := NewAgent(context.Background(), cfg)

	got, err := agent.Answer("what is a dividend")
	if err != nil {
		t.Fatalf("the fallback must never return an error, got %v", err)
	}
	if got != AnswerUnavailable {
		t.Fatalf("expected %q, got %q", AnswerUnavailable, got)
	}
}

func TestRetrieveWithoutServiceReturnsNothing(t *testing.T) {
	agent := NewAgent(context.Background(), &config.Config{})

	if passages := agent.retrieve("anything"); passages != nil {
		t.Fatalf("expected no passages without a retrieval service, got %v", passages)
	}
}
