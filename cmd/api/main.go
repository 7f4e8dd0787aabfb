package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"hotel_concierge/internal/adapters/airtable"
	server "hotel_concierge/internal/adapters/http_server"
	"hotel_concierge/internal/adapters/memcache"
	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/adapters/openaichat"
	redisad "hotel_concierge/internal/adapters/redis"
	"hotel_concierge/internal/app"
	"hotel_concierge/internal/domain"
	"hotel_concierge/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// knowledge source
	source, err := airtable.New(cfg.SourceBase, cfg.SourceKey, cfg.SourceRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("knowledge source init failed")
	}

	// chat model
	model, err := openaichat.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.OpenAIModel)
	if err != nil {
		log.Fatal().Err(err).Msg("chat model init failed")
	}

	// cache backend
	var cache domain.Cache
	if cfg.CacheBackend == "redis" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	} else {
		cache = memcache.New()
	}

	// pipeline
	knowledge := app.NewKnowledge(source, cache, cfg.CacheTTL)
	limiter := app.NewRateLimiter(cfg.RateWindow, cfg.RateMax)
	concierge := app.NewConcierge(knowledge, model, limiter, cfg.DefaultHotel)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Pipeline: concierge})

	log.Info().Str("addr", cfg.HTTPAddr).Str("hotel", cfg.DefaultHotel).Msg("concierge API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
