package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

// Concierge is the answer resolution pipeline: guard -> intent routing ->
// knowledge retrieval -> deterministic rendering -> grounded generation ->
// post-generation guard.
type Concierge struct {
	knowledge *Knowledge
	router    *Router
	generator *Generator
	limiter   *RateLimiter
	renderers []Renderer
	defSlug   string
}

func NewConcierge(k *Knowledge, model domain.ChatModel, limiter *RateLimiter, defaultSlug string) *Concierge {
	return &Concierge{
		knowledge: k,
		router:    NewRouter(model),
		generator: NewGenerator(model),
		limiter:   limiter,
		renderers: Renderers(),
		defSlug:   strings.ToLower(defaultSlug),
	}
}

// Ask answers one visitor question. Data absence is never an error; only
// infrastructure failures (knowledge source outage, unexpected model errors)
// surface as errors.
func (c *Concierge) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error) {
	start := time.Now()
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.AskResult{}, domain.ErrEmptyQuestion
	}
	slug := strings.ToLower(strings.TrimSpace(req.HotelSlug))
	if slug == "" {
		slug = c.defSlug
	}

	if req.Caller != "" && !c.limiter.Allow(req.Caller) {
		return c.finish(domain.AskResult{OK: true, Answer: MsgWait}, domain.IntentResolution{Scope: ScopeGeneral}, nil, "rate_limited", start), nil
	}

	pats, err := c.knowledge.IntentPatterns(ctx)
	if err != nil {
		return domain.AskResult{}, err
	}
	res := c.router.Resolve(ctx, question, pats)

	bundle, err := c.knowledge.Fetch(ctx, slug, res.Intent, question)
	if err != nil {
		return domain.AskResult{}, err
	}
	c.attachLinkedRecords(ctx, &bundle, patternByName(pats, res.Intent))

	q := NewQuestion(question)
	for _, r := range c.renderers {
		if r.Detect(q, bundle) {
			return c.finish(domain.AskResult{OK: true, Answer: r.Render(q, bundle)}, res, &bundle, "deterministic:"+r.Name, start), nil
		}
	}

	if NeedsHardStop(q.Norm, bundle) {
		return c.finish(domain.AskResult{OK: true, Answer: MsgNoInfo}, res, &bundle, "no_data", start), nil
	}

	rule := c.outputRule(ctx, res.Scope)
	knowledge := SerializeBundle(bundle)
	answer, err := c.generator.Answer(ctx, question, knowledge, rule)
	if err != nil {
		if errors.Is(err, domain.ErrOverloaded) {
			// known upstream pressure: degrade, don't fail
			return c.finish(domain.AskResult{OK: true, Answer: MsgWait}, res, &bundle, "overloaded", start), nil
		}
		return domain.AskResult{}, err
	}
	if answer == "" {
		return c.finish(domain.AskResult{OK: true, Answer: MsgNoInfo}, res, &bundle, "empty_generation", start), nil
	}

	if guarded, hit := GuardPrice(answer, knowledge); hit {
		return c.finish(domain.AskResult{OK: true, Answer: guarded}, res, &bundle, "price_guard", start), nil
	}
	return c.finish(domain.AskResult{OK: true, Answer: answer}, res, &bundle, "generated", start), nil
}

// attachLinkedRecords pulls the pattern's directly linked service/room
// records into the matched set, ahead of anything found by intent tags.
func (c *Concierge) attachLinkedRecords(ctx context.Context, b *domain.Bundle, pat *domain.IntentPattern) {
	if pat == nil {
		return
	}
	var linked []domain.ContextRecord
	for _, rec := range c.knowledge.RecordsByID(ctx, domain.TableServices, pat.ServiceIDs, 5) {
		s := mapService(rec)
		if s.Active {
			linked = append(linked, serviceContext(s))
		}
	}
	for _, rec := range c.knowledge.RecordsByID(ctx, domain.TableRooms, pat.RoomIDs, 5) {
		r := mapRoom(rec)
		if r.Active {
			linked = append(linked, roomContext(r))
		}
	}
	if len(linked) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(linked))
	for _, cr := range linked {
		seen[cr.Kind+":"+cr.Name] = struct{}{}
	}
	for _, cr := range b.Matched {
		if _, dup := seen[cr.Kind+":"+cr.Name]; !dup {
			linked = append(linked, cr)
		}
	}
	b.Matched = linked
	b.Fallback = nil
}

// outputRule picks the highest-priority active rule for the scope. Rules are
// style hints; failing to load them must not fail the question.
func (c *Concierge) outputRule(ctx context.Context, scope string) *domain.OutputRule {
	rules, err := c.knowledge.OutputRules(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("output rules unavailable, using bare prompt")
		return nil
	}
	var best *domain.OutputRule
	for i := range rules {
		if !strings.EqualFold(rules[i].Scope, scope) {
			continue
		}
		if best == nil || rules[i].Priority > best.Priority {
			best = &rules[i]
		}
	}
	return best
}

func (c *Concierge) finish(out domain.AskResult, res domain.IntentResolution, b *domain.Bundle, path string, start time.Time) domain.AskResult {
	out.Meta = domain.AskMeta{
		Intent:     res.Intent,
		Confidence: res.Confidence,
		Scope:      res.Scope,
		Path:       path,
		ElapsedMS:  time.Since(start).Milliseconds(),
	}
	if b != nil {
		out.Meta.Matched = len(b.Matched)
		out.Meta.Fallback = len(b.Fallback)
	}
	observability.ObserveAnswer(path)
	log.Info().
		Str("path", path).
		Str("intent", res.Intent).
		Float64("confidence", res.Confidence).
		Int64("elapsed_ms", out.Meta.ElapsedMS).
		Msg("question answered")
	return out
}
