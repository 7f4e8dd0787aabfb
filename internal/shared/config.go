package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	SourceBase   string
	SourceKey    string
	SourceRPS    int
	OpenAIBase   string
	OpenAIKey    string
	OpenAIModel  string
	DefaultHotel string
	CacheBackend string // memory|redis
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	RateWindow   time.Duration
	RateMax      int
	WarmupSlugs  []string
	Workers      int
}

func Load() Config {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		SourceBase:   env("KNOWLEDGE_BASE_URL", "https://api.airtable.com/v0/appHotelKnowledge"),
		SourceKey:    env("KNOWLEDGE_API_KEY", ""),
		SourceRPS:    atoi("KNOWLEDGE_RPS", 5),
		OpenAIBase:   env("OPENAI_BASE_URL", ""),
		OpenAIKey:    env("OPENAI_API_KEY", ""),
		OpenAIModel:  env("OPENAI_MODEL", "gpt-4o-mini"),
		DefaultHotel: env("DEFAULT_HOTEL_SLUG", "heritage-palace"),
		CacheBackend: env("CACHE_BACKEND", "memory"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		RateWindow:   time.Duration(atoi("RATE_WINDOW_SECONDS", 20)) * time.Second,
		RateMax:      atoi("RATE_MAX_REQUESTS", 12),
		WarmupSlugs:  splitList(env("WARMUP_HOTEL_SLUGS", "")),
		Workers:      atoi("WARMUP_WORKERS", 4),
	}
	c.RedisDB = atoi("REDIS_DB", 0)
	if c.SourceKey == "" {
		log.Warn().Msg("KNOWLEDGE_API_KEY is empty")
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
