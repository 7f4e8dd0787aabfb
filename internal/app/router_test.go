package app_test

import (
	"context"
	"testing"

	"hotel_concierge/internal/app"
	"hotel_concierge/internal/domain"
)

func routerPatterns() []domain.IntentPattern {
	return []domain.IntentPattern{
		{Name: "breakfast_hours", Scope: "General", Active: true,
			Phrases: []string{"when is breakfast served", "breakfast time", "morning meal hours"}},
		{Name: "parking_info", Scope: "General", Active: true,
			Phrases: []string{"is there parking", "where can i park", "garage"}},
		{Name: "bed_setup", Scope: "Room Guide", Active: true,
			Phrases: []string{"what beds do the rooms have", "king bed", "twin beds"}},
		{Name: "sea_view", Scope: "Room Guide", Active: true,
			Phrases: []string{"rooms with sea view", "view of the sea"}},
	}
}

func TestRouter_PrerouteSkipsModel(t *testing.T) {
	model := &fakeModel{}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "What time is breakfast?", routerPatterns())
	if res.Intent != "breakfast_hours" {
		t.Fatalf("intent: %+v", res)
	}
	if res.Confidence != 0.92 {
		t.Fatalf("preroute hits carry the fixed confidence, got %v", res.Confidence)
	}
	if model.calls() != 0 {
		t.Fatalf("preroute must not touch the model, saw %d calls", model.calls())
	}
}

func TestRouter_ClassifyAcceptsKnownIntent(t *testing.T) {
	model := &fakeModel{jsonReply: `{"intent":"sea_view","confidence":0.81,"outputScope":"","note":"view question"}`}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "do any rooms look out over the water", routerPatterns())
	if res.Intent != "sea_view" || res.Confidence != 0.81 {
		t.Fatalf("classification not used: %+v", res)
	}
	if res.Scope != "Room Guide" {
		t.Fatalf("scope should come from the matched pattern, got %q", res.Scope)
	}
}

func TestRouter_ClassifyParsesProseWrappedJSON(t *testing.T) {
	model := &fakeModel{jsonReply: "Sure, here you go:\n{\"intent\":\"sea_view\",\"confidence\":0.7,\"outputScope\":\"\",\"note\":\"\"}\nHope that helps."}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "do any rooms look out over the water", routerPatterns())
	if res.Intent != "sea_view" {
		t.Fatalf("prose-wrapped reply should still parse: %+v", res)
	}
}

func TestRouter_ClassifyDiscardsFabricatedIntent(t *testing.T) {
	model := &fakeModel{jsonReply: `{"intent":"pool_party","confidence":0.99,"outputScope":"General","note":""}`}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "zxqv blorp", routerPatterns())
	if res.Intent != "" {
		t.Fatalf("unknown labels must be discarded, got %+v", res)
	}
	if res.Scope != app.ScopeGeneral {
		t.Fatalf("scope should fall back to %q, got %q", app.ScopeGeneral, res.Scope)
	}
}

func TestRouter_LowConfidenceFallsToLexical(t *testing.T) {
	model := &fakeModel{jsonReply: `{"intent":"sea_view","confidence":0.2,"outputScope":"","note":""}`}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "what beds are in the rooms", routerPatterns())
	if res.Intent != "bed_setup" {
		t.Fatalf("lexical stage should win after a weak classification: %+v", res)
	}
	if res.Confidence < 0.55 || res.Confidence > 0.85 {
		t.Fatalf("lexical confidence out of band: %v", res.Confidence)
	}
}

func TestRouter_ModelErrorDegradesToLexical(t *testing.T) {
	model := &fakeModel{err: errBoom}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "what beds are in the rooms", routerPatterns())
	if res.Intent != "bed_setup" {
		t.Fatalf("a dead model must not break routing: %+v", res)
	}
}

func TestRouter_NoStageMatches(t *testing.T) {
	model := &fakeModel{jsonReply: `{"intent":"","confidence":0,"outputScope":"","note":""}`}
	r := app.NewRouter(model)

	res := r.Resolve(context.Background(), "zxqv blorp", routerPatterns())
	if res.Intent != "" || res.Scope != app.ScopeGeneral {
		t.Fatalf("expected the empty general resolution, got %+v", res)
	}
}
