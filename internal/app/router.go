package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

const ScopeGeneral = "General"

// confidence assigned to deterministic pre-router hits
const prerouteConfidence = 0.92

// below this, a model classification is treated as a non-answer
const classifyMinConfidence = 0.35

// Router resolves a free-text question to at most one known intent through
// three ordered stages: keyword pre-routing, model classification, lexical
// heuristic fallback. Classification ambiguity never errors; only upstream
// transport failures do, and even those degrade to the lexical stage.
type Router struct {
	model domain.ChatModel
}

func NewRouter(model domain.ChatModel) *Router { return &Router{model: model} }

/********** stage 1: deterministic pre-routing **********/

type prerouteBucket struct {
	name     string
	keywords []string
}

// Fixed domain buckets. Hitting any keyword routes without a model call.
var prerouteBuckets = []prerouteBucket{
	{"parking", []string{"parking", "garage", "park the car", "parkiral"}},
	{"smoking", []string{"smoking", "smoke", "cigarette", "pusenje"}},
	{"minibar", []string{"minibar", "mini bar"}},
	{"breakfast", []string{"breakfast", "dorucak", "morning meal"}},
	{"transfer", []string{"transfer", "shuttle", "airport pickup"}},
	{"taxi", []string{"taxi", "uber", "bolt", "ride hail"}},
	{"directions", []string{"directions", "how to get", "how do i get", "how to reach"}},
	{"tourist tax", []string{"tourist tax", "city tax", "boravisna pristojba"}},
	{"invoice", []string{"invoice", "receipt", "r1 racun", "racun"}},
	{"wifi", []string{"wifi", "wi fi", "internet"}},
	{"luggage", []string{"luggage", "baggage", "suitcase", "prtljaga"}},
	{"late checkout", []string{"late checkout", "late check out", "early check in"}},
	{"spa", []string{"spa", "massage", "wellness", "sauna"}},
	{"pets", []string{"pets", "pet friendly", "dog", "kucni ljubimci"}},
}

// preroute finds the intent pattern that best matches a hit bucket's keyword
// set: score is the count of bucket keywords found in the pattern text,
// best-of with first-seen winning ties.
func (r *Router) preroute(norm string, pats []domain.IntentPattern) (domain.IntentResolution, bool) {
	for _, bucket := range prerouteBuckets {
		hit := false
		for _, kw := range bucket.keywords {
			if containsPhrase(norm, kw) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		var best *domain.IntentPattern
		bestScore := 0
		for i := range pats {
			text := Normalize(pats[i].Name + " " + strings.Join(pats[i].Phrases, " "))
			score := 0
			for _, kw := range bucket.keywords {
				if strings.Contains(text, kw) {
					score++
				}
			}
			if score > bestScore {
				bestScore = score
				best = &pats[i]
			}
		}
		if best != nil {
			observability.ObserveIntentStage("preroute")
			return domain.IntentResolution{
				Intent:     best.Name,
				Confidence: prerouteConfidence,
				Scope:      best.Scope,
				Note:       "preroute:" + bucket.name,
			}, true
		}
	}
	return domain.IntentResolution{}, false
}

/********** stage 2: model classification **********/

const classifySystemPrompt = `You classify questions from hotel website visitors.
You are given a list of known intents. Pick AT MOST ONE intent whose name you
copy verbatim from the list, or use an empty string when none applies.
Respond with a JSON object with exactly these keys:
{"intent": string, "confidence": number 0..1, "outputScope": string, "note": string}
Never invent intent names that are not in the list.`

type classifyReply struct {
	Intent      string  `json:"intent"`
	Confidence  float64 `json:"confidence"`
	OutputScope string  `json:"outputScope"`
	Note        string  `json:"note"`
}

func (r *Router) classify(ctx context.Context, question string, pats []domain.IntentPattern) (domain.IntentResolution, error) {
	var sb strings.Builder
	sb.WriteString("Known intents:\n")
	for _, p := range pats {
		phrases := strings.Join(p.Phrases, "; ")
		if len(phrases) > 120 {
			phrases = phrases[:120]
		}
		sb.WriteString("- " + p.Name + " | scope: " + p.Scope + " | examples: " + phrases + "\n")
	}
	sb.WriteString("\nQuestion: " + question)

	raw, err := r.model.CompleteJSON(ctx, classifySystemPrompt, sb.String())
	if err != nil {
		return domain.IntentResolution{}, err
	}
	var reply classifyReply
	if uerr := json.Unmarshal([]byte(extractJSONObject(raw)), &reply); uerr != nil {
		log.Warn().Err(uerr).Msg("unparseable classification reply")
		return domain.IntentResolution{Scope: ScopeGeneral}, nil
	}
	reply.Intent = strings.ToLower(strings.TrimSpace(reply.Intent))
	if reply.Intent != "" && !knownIntent(pats, reply.Intent) {
		// fabricated label: discard, keep the scope hint
		log.Warn().Str("intent", reply.Intent).Msg("classifier returned unknown intent, discarding")
		reply.Intent = ""
		reply.Confidence = 0
	}
	scope := reply.OutputScope
	if reply.Intent != "" {
		if p := patternByName(pats, reply.Intent); p != nil {
			scope = p.Scope
		}
	}
	if scope == "" {
		scope = ScopeGeneral
	}
	observability.ObserveIntentStage("classify")
	return domain.IntentResolution{
		Intent:     reply.Intent,
		Confidence: reply.Confidence,
		Scope:      scope,
		Note:       reply.Note,
	}, nil
}

// extractJSONObject trims to the outermost {...} so prose-wrapped replies
// still parse.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func knownIntent(pats []domain.IntentPattern, name string) bool {
	return patternByName(pats, name) != nil
}

func patternByName(pats []domain.IntentPattern, name string) *domain.IntentPattern {
	for i := range pats {
		if pats[i].Name == name {
			return &pats[i]
		}
	}
	return nil
}

/********** stage 3: lexical heuristic fallback **********/

// tokenSynonyms expands question tokens before overlap scoring so close
// phrasings still land on the right pattern.
var tokenSynonyms = map[string][]string{
	"king":      {"bed", "beds"},
	"twin":      {"bed", "beds"},
	"queen":     {"bed", "beds"},
	"krevet":    {"bed", "beds"},
	"kreveti":   {"bed", "beds"},
	"bed":       {"beds"},
	"beds":      {"bed"},
	"wifi":      {"internet"},
	"internet":  {"wifi"},
	"car":       {"parking"},
	"garage":    {"parking"},
	"morning":   {"breakfast"},
	"shuttle":   {"transfer"},
	"airport":   {"transfer"},
	"bill":      {"invoice"},
	"receipt":   {"invoice"},
	"checkout":  {"check", "out"},
	"checkin":   {"check", "in"},
}

const lexicalMinScore = 2

func (r *Router) lexical(question string, pats []domain.IntentPattern) (domain.IntentResolution, bool) {
	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return domain.IntentResolution{}, false
	}
	expanded := make([]string, 0, len(tokens)*2)
	seen := map[string]struct{}{}
	add := func(t string) {
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			expanded = append(expanded, t)
		}
	}
	for _, t := range tokens {
		add(t)
		for _, syn := range tokenSynonyms[t] {
			add(syn)
		}
	}

	var best *domain.IntentPattern
	bestScore := 0
	for i := range pats {
		text := Normalize(pats[i].Name + " " + strings.Join(pats[i].Phrases, " "))
		score := 0
		for _, t := range expanded {
			if len(t) < 3 {
				continue
			}
			if containsToken(text, t) {
				score++
			}
		}
		// small bonus when the pattern's own name carries the leading token
		if strings.Contains(Normalize(pats[i].Name), tokens[0]) {
			score++
		}
		if score > bestScore {
			bestScore = score
			best = &pats[i]
		}
	}
	if best == nil || bestScore < lexicalMinScore {
		return domain.IntentResolution{}, false
	}
	conf := 0.55 + 0.05*float64(bestScore)
	if conf > 0.85 {
		conf = 0.85
	}
	observability.ObserveIntentStage("lexical")
	return domain.IntentResolution{
		Intent:     best.Name,
		Confidence: conf,
		Scope:      best.Scope,
		Note:       "lexical",
	}, true
}

/********** resolution **********/

// Resolve short-circuits on the first confident stage. It never fails:
// transport errors degrade to the lexical stage and finally to "no intent".
func (r *Router) Resolve(ctx context.Context, question string, pats []domain.IntentPattern) domain.IntentResolution {
	norm := Normalize(question)
	if res, ok := r.preroute(norm, pats); ok {
		return res
	}

	res, err := r.classify(ctx, question, pats)
	if err != nil {
		log.Warn().Err(err).Msg("intent classification failed, using lexical fallback")
	} else if res.Intent != "" && res.Confidence >= classifyMinConfidence {
		return res
	}

	if lex, ok := r.lexical(question, pats); ok {
		return lex
	}
	observability.ObserveIntentStage("none")
	return domain.IntentResolution{Scope: ScopeGeneral}
}
