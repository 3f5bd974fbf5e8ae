package cache

import (
	"testing"
	"time"
)

func TestAnswerCacheRoundTrip(t *testing.T) {
	c := NewAnswerCache(t.TempDir(), time.Hour, true)

	c.Set("alice", "AAPL price", "X")

	got, ok := c.Get("alice", "AAPL price")
	if !ok || got != "X" {
		t.Fatalf("expected cached answer X, got %q (hit=%v)", got, ok)
	}
}

func TestAnswerCacheScopedByOwner(t *testing.T) {
	c := NewAnswerCache(t.TempDir(), time.Hour, true)

	c.Set("alice", "AAPL price", "X")

	if got, ok := c.Get("bob", "AAPL price"); ok {
		t.Fatalf("bob must not see alice's answer, got %q", got)
	}
}

func TestAnswerCacheNormalizesQueries(t *testing.T) {
	c := NewAnswerCache(t.TempDir(), time.Hour, true)

	c.Set("alice", "  AAPL Price ", "X")

	got, ok := c.Get("alice", "aapl price")
	if !ok || got != "X" {
		t.Fatalf("normalized variants should share an entry, got %q (hit=%v)", got, ok)
	}

	if _, ok := c.Get("alice", "aapl quote"); ok {
		t.Fatal("a differently-normalized query must miss")
	}
}

func TestAnswerCacheExpiry(t *testing.T) {
	c := NewAnswerCache(t.TempDir(), 10*time.Millisecond, false)

	c.Set("alice", "AAPL price", "X")
	time.Sleep(25 * time.Millisecond)

	if got, ok := c.Get("alice", "AAPL price"); ok {
		t.Fatalf("expired entry must miss, got %q", got)
	}
}

func TestAnswerCacheFileLayerSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	c1 := NewAnswerCache(dir, time.Hour, true)
	c1.Set("alice", "AAPL price", "X")

	c2 := NewAnswerCache(dir, time.Hour, true)
	got, ok := c2.Get("alice", "AAPL price")
	if !ok || got != "X" {
		t.Fatalf("expected file-layer hit after restart, got %q (hit=%v)", got, ok)
	}
}

func TestAnswerCacheDisabledFileLayer(t *testing.T) {
	dir := t.TempDir()

	c1 := NewAnswerCache(dir, time.Hour, false)
	c1.Set("alice", "AAPL price", "X")

	// memory still works
	if got, ok := c1.Get("alice", "AAPL price"); !ok || got != "X" {
		t.Fatalf("memory layer should hit, got %q (hit=%v)", got, ok)
	}

	// nothing persisted
	c2 := NewAnswerCache(dir, time.Hour, false)
	if got, ok := c2.Get("alice", "AAPL price"); ok {
		t.Fatalf("disabled file layer must not persist, got %q", got)
	}
}
