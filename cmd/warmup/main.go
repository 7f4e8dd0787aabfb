// warmup pre-fills the knowledge caches for the configured hotels so the
// first guest question after a deploy doesn't pay the upstream latency.
package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_concierge/internal/adapters/airtable"
	"hotel_concierge/internal/adapters/memcache"
	"hotel_concierge/internal/adapters/observability"
	redisad "hotel_concierge/internal/adapters/redis"
	"hotel_concierge/internal/app"
	"hotel_concierge/internal/domain"
	"hotel_concierge/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	slugs := cfg.WarmupSlugs
	if len(slugs) == 0 {
		slugs = []string{cfg.DefaultHotel}
	}
	log.Info().Strs("hotels", slugs).Int("workers", cfg.Workers).Msg("warmup starting")

	source, err := airtable.New(cfg.SourceBase, cfg.SourceKey, cfg.SourceRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("knowledge source init failed")
	}

	var cache domain.Cache
	if cfg.CacheBackend == "redis" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	} else {
		// in-process cache only warms this run; useful as a dry run
		cache = memcache.New()
	}
	knowledge := app.NewKnowledge(source, cache, cfg.CacheTTL)

	// hotel-agnostic tables first
	if _, err := knowledge.IntentPatterns(ctx); err != nil {
		log.Fatal().Err(err).Msg("intent patterns fetch failed")
	}
	if _, err := knowledge.OutputRules(ctx); err != nil {
		log.Warn().Err(err).Msg("output rules fetch failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, slug := range slugs {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			defer sem.Release(1)

			if _, err := knowledge.Fetch(ctx, slug, "", ""); err != nil {
				log.Warn().Str("hotel", slug).Err(err).Msg("warmup failed")
				return
			}
			log.Info().Str("hotel", slug).Msg("warmup ok")
		}(slug)
	}

	wg.Wait()
	log.Info().Msg("warmup completed")
}
