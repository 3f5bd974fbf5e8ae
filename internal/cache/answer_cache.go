package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AnswerCache maps (owner, normalized query) to a previously computed answer.
// Entries live in memory with a JSON file second level so answers survive
// restarts. Every file error degrades to a cache miss or a no-op.
type AnswerCache struct {
	mu          sync.RWMutex
	entries     map[string]*cachedAnswer
	cacheDir    string
	ttl         time.Duration
	fileEnabled bool
}

type cachedAnswer struct {
	Answer    string    `json:"answer"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAnswerCache(cacheDir string, ttl time.Duration, fileEnabled bool) *AnswerCache {
	return &AnswerCache{
		entries:     make(map[string]*cachedAnswer),
		cacheDir:    filepath.Join(cacheDir, "answers"),
		ttl:         ttl,
		fileEnabled: fileEnabled,
	}
}

// NormalizeQuery collapses query variants onto one cache key component.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (c *AnswerCache) key(owner, query string) string {
	return fmt.Sprintf("qa:%s:%s", owner, NormalizeQuery(query))
}

func (c *AnswerCache) filePath(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(c.cacheDir, fmt.Sprintf("qa_%x.json", hash))
}

// Get returns the cached answer for an owner's query, if present and fresh.
func (c *AnswerCache) Get(owner, query string) (string, bool) {
	key := c.key(owner, query)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists {
		if time.Since(entry.Timestamp) <= c.ttl {
			return entry.Answer, true
		}
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}

	if !c.fileEnabled {
		return "", false
	}

	path := c.filePath(key)
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return "", false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var stored cachedAnswer
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", false
	}
	// Guard against md5 collisions across owners
	if stored.Key != key {
		return "", false
	}

	c.mu.Lock()
	c.entries[key] = &cachedAnswer{Answer: stored.Answer, Key: key, Timestamp: info.ModTime()}
	c.mu.Unlock()

	return stored.Answer, true
}

// Set stores an answer for an owner's query.
func (c *AnswerCache) Set(owner, query, answer string) {
	key := c.key(owner, query)
	entry := &cachedAnswer{Answer: answer, Key: key, Timestamp: time.Now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if !c.fileEnabled {
		return
	}

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		log.Printf("answer cache: create dir: %v", err)
		return
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(c.filePath(key), data, 0644); err != nil {
		log.Printf("answer cache: write file: %v", err)
	}
}
