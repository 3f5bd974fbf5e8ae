package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	DBPath       string `json:"db_path"`

	// LLM backend used by the knowledge-base fallback
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"`
	OpenAIModel   string `json:"openai_model"`

	// Retrieval service for the knowledge-base fallback
	RAGServiceURL string `json:"rag_service_url"`

	// Market/news data API keys
	FinnhubAPIKey string `json:"finnhub_api_key"`
	NewsAPIKey    string `json:"newsapi_key"`

	// Longport API Configuration (optional secondary price source)
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	CacheEnabled   bool          `json:"cache_enabled"`
	AnswerCacheTTL time.Duration `json:"answer_cache_ttl"`

	HistoryLimit int  `json:"history_limit"`
	Debug        bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		DBPath:       filepath.Join(currentDir, "data", "stockchat.db"),

		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4o-mini",

		CacheEnabled:   true,
		AnswerCacheTTL: 24 * time.Hour,

		HistoryLimit: 200,
		Debug:        false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("STOCKCHAT_DB"); val != "" {
		c.DBPath = val
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		c.OpenAIModel = val
	}
	if val := os.Getenv("RAG_SERVICE_URL"); val != "" {
		c.RAGServiceURL = val
	}

	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := os.Getenv("NEWSAPI_KEY"); val != "" {
		c.NewsAPIKey = val
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("ANSWER_CACHE_TTL"); val != "" {
		if ttl, err := time.ParseDuration(val); err == nil && ttl > 0 {
			c.AnswerCacheTTL = ttl
		}
	}

	if val := os.Getenv("HISTORY_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.HistoryLimit = v
		}
	}

	if val := os.Getenv("STOCKCHAT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.AnswerCacheTTL <= 0 {
		return fmt.Errorf("answer_cache_ttl must be positive")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.DataCacheDir,
		filepath.Dir(c.DBPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
