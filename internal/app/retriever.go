package app

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_concierge/internal/domain"
)

// Knowledge serves cached, filtered reads over the external record store.
// All reads are cache-aside with a short freshness window; concurrent misses
// may both refetch, which is fine because values are idempotent reads.
type Knowledge struct {
	src   domain.KnowledgeSource
	cache domain.Cache
	ttl   time.Duration
}

func NewKnowledge(src domain.KnowledgeSource, cache domain.Cache, ttl time.Duration) *Knowledge {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Knowledge{src: src, cache: cache, ttl: ttl}
}

func (k *Knowledge) ttlSec() int { return int(k.ttl.Seconds()) }

// Hotel looks up an active hotel by exact slug. Absence is not an error.
func (k *Knowledge) Hotel(ctx context.Context, slug string) (*domain.HotelRecord, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, nil
	}
	key := "hotel:" + slug
	var h domain.HotelRecord
	if ok, _ := k.cache.Get(ctx, key, &h); ok {
		return &h, nil
	}
	recs, err := k.src.ListRecords(ctx, domain.TableHotels, map[string]string{"slug": slug})
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		hr := mapHotel(r)
		if hr.Active && hr.Slug == slug {
			_ = k.cache.Set(ctx, key, hr, k.ttlSec())
			return &hr, nil
		}
	}
	return nil, nil
}

// ServicesFor returns active, web-visible services owned by the hotel.
func (k *Knowledge) ServicesFor(ctx context.Context, slug string) ([]domain.ServiceRecord, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	key := "services:" + slug
	var out []domain.ServiceRecord
	if ok, _ := k.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	recs, err := k.src.ListRecords(ctx, domain.TableServices, nil)
	if err != nil {
		return nil, err
	}
	out = make([]domain.ServiceRecord, 0, len(recs))
	for _, r := range recs {
		s := mapService(r)
		if s.Active && domain.OwnedBy(s.HotelSlugs, slug) && domain.VisibleOnWeb(s.Channels) {
			out = append(out, s)
		}
	}
	_ = k.cache.Set(ctx, key, out, k.ttlSec())
	return out, nil
}

// RoomsFor returns active, web-visible rooms owned by the hotel.
func (k *Knowledge) RoomsFor(ctx context.Context, slug string) ([]domain.RoomRecord, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	key := "rooms:" + slug
	var out []domain.RoomRecord
	if ok, _ := k.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	recs, err := k.src.ListRecords(ctx, domain.TableRooms, nil)
	if err != nil {
		return nil, err
	}
	out = make([]domain.RoomRecord, 0, len(recs))
	for _, r := range recs {
		rm := mapRoom(r)
		if rm.Active && domain.OwnedBy(rm.HotelSlugs, slug) && domain.VisibleOnWeb(rm.Channels) {
			out = append(out, rm)
		}
	}
	_ = k.cache.Set(ctx, key, out, k.ttlSec())
	return out, nil
}

// IntentPatterns returns active, web-visible patterns. Hotel-agnostic: one
// cache entry for the whole table.
func (k *Knowledge) IntentPatterns(ctx context.Context) ([]domain.IntentPattern, error) {
	const key = "intents"
	var out []domain.IntentPattern
	if ok, _ := k.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	recs, err := k.src.ListRecords(ctx, domain.TableIntents, nil)
	if err != nil {
		return nil, err
	}
	out = make([]domain.IntentPattern, 0, len(recs))
	for _, r := range recs {
		p := mapIntentPattern(r)
		if p.Active && p.Name != "" && domain.VisibleOnWeb(p.Channels) {
			out = append(out, p)
		}
	}
	_ = k.cache.Set(ctx, key, out, k.ttlSec())
	return out, nil
}

func (k *Knowledge) OutputRules(ctx context.Context) ([]domain.OutputRule, error) {
	const key = "rules"
	var out []domain.OutputRule
	if ok, _ := k.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	recs, err := k.src.ListRecords(ctx, domain.TableRules, nil)
	if err != nil {
		return nil, err
	}
	out = make([]domain.OutputRule, 0, len(recs))
	for _, r := range recs {
		rule := mapOutputRule(r)
		if rule.Active && domain.VisibleOnWeb(rule.Channels) {
			out = append(out, rule)
		}
	}
	_ = k.cache.Set(ctx, key, out, k.ttlSec())
	return out, nil
}

// RecordsByID resolves a bounded, de-duplicated id list. A failed lookup is
// dropped, not retried; partial results are fine.
func (k *Knowledge) RecordsByID(ctx context.Context, table string, ids []string, limit int) []domain.SourceRecord {
	if limit <= 0 {
		limit = 5
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]domain.SourceRecord, 0, limit)
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rec, err := k.src.GetRecord(ctx, table, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				log.Warn().Str("table", table).Str("id", id).Err(err).Msg("linked record fetch failed")
			}
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Fetch assembles the knowledge bundle for one question: hotel core, all
// visible services and rooms, the intent-matched subset, and a lexical
// fallback (top 3 positive scores) when nothing matched the intent.
func (k *Knowledge) Fetch(ctx context.Context, slug, intent, question string) (domain.Bundle, error) {
	var b domain.Bundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := k.Hotel(gctx, slug)
		b.Hotel = h
		return err
	})
	g.Go(func() error {
		s, err := k.ServicesFor(gctx, slug)
		b.Services = s
		return err
	})
	g.Go(func() error {
		r, err := k.RoomsFor(gctx, slug)
		b.Rooms = r
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Bundle{}, err
	}

	b.All = make([]domain.ContextRecord, 0, len(b.Services)+len(b.Rooms))
	for _, s := range b.Services {
		b.All = append(b.All, serviceContext(s))
	}
	for _, r := range b.Rooms {
		b.All = append(b.All, roomContext(r))
	}

	if intent != "" {
		for _, cr := range b.All {
			if hasIntent(cr.Intents, intent) {
				b.Matched = append(b.Matched, cr)
			}
		}
	}
	if len(b.Matched) == 0 {
		b.Fallback = lexicalTop(b.All, question, 3)
	}
	return b, nil
}

func hasIntent(set []string, intent string) bool {
	for _, i := range set {
		if i == intent {
			return true
		}
	}
	return false
}

// lexicalTop scores each record by question-token overlap with its text and
// keeps the best n positive scores.
func lexicalTop(all []domain.ContextRecord, question string, n int) []domain.ContextRecord {
	tokens := Tokenize(question)
	type scored struct {
		rec   domain.ContextRecord
		score int
		order int
	}
	var hits []scored
	for i, cr := range all {
		norm := Normalize(cr.Name + " " + cr.Text)
		score := 0
		seen := map[string]struct{}{}
		for _, t := range tokens {
			if len(t) < 3 {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if containsToken(norm, t) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{rec: cr, score: score, order: i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].order < hits[j].order
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]domain.ContextRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out
}

/********** context serialization **********/

func serviceContext(s domain.ServiceRecord) domain.ContextRecord {
	var parts []string
	if s.Description != "" {
		parts = append(parts, s.Description)
	}
	if len(s.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(s.Categories, ", "))
	}
	if s.Hours != "" {
		parts = append(parts, "Hours: "+s.Hours)
	}
	return domain.ContextRecord{
		Kind:       "service",
		Name:       s.Name,
		Text:       strings.Join(parts, ". "),
		PromptHint: s.PromptHint,
		Intents:    s.Intents,
	}
}

func roomContext(r domain.RoomRecord) domain.ContextRecord {
	var parts []string
	if r.Type != "" {
		parts = append(parts, "Type: "+r.Type)
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	if r.Capacity > 0 {
		parts = append(parts, "Sleeps "+strconv.Itoa(r.Capacity))
	}
	if r.Floor != "" {
		parts = append(parts, "Floor: "+r.Floor)
	}
	if r.Area != "" {
		parts = append(parts, "Area: "+r.Area)
	}
	if r.View != "" {
		parts = append(parts, "View: "+r.View)
	}
	if len(r.BedTypes) > 0 {
		parts = append(parts, "Beds: "+strings.Join(r.BedTypes, ", "))
	}
	if len(r.Amenities) > 0 {
		parts = append(parts, "Amenities: "+strings.Join(r.Amenities, ", "))
	}
	return domain.ContextRecord{
		Kind:       "room",
		Name:       r.Name,
		Text:       strings.Join(parts, ". "),
		PromptHint: r.PromptHint,
		Intents:    r.Intents,
	}
}
