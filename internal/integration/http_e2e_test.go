//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_concierge/internal/adapters/airtable"
	httpserver "hotel_concierge/internal/adapters/http_server"
	"hotel_concierge/internal/adapters/memcache"
	"hotel_concierge/internal/app"
	"hotel_concierge/internal/domain"
)

// scriptedModel answers classification and generation with fixed strings so
// the whole stack runs without a live endpoint.
type scriptedModel struct {
	classification string
	answer         string
}

func (m *scriptedModel) Complete(ctx context.Context, system, user string) (string, error) {
	return m.answer, nil
}

func (m *scriptedModel) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return m.classification, nil
}

// knowledgeUpstream serves the five tables the retriever reads, in the wire
// shape of the real record store.
func knowledgeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	tables := map[string]string{
		"Hotels": `{"records":[{"id":"h1","fields":{
			"slug":"heritage-palace","name":"Heritage Palace","address":"Obala 1, Split",
			"phone":"+385 21 000 000","email":"info@heritage.example",
			"Check-in":"14:00","Check-out":"11:00","active":true}}]}`,
		"Services": `{"records":[{"id":"s1","fields":{
			"name":"Breakfast","hotel":"heritage-palace","description":"Buffet breakfast",
			"hours":"07:00-10:30","intents":"breakfast_hours","active":true}}]}`,
		"Rooms": `{"records":[{"id":"r1","fields":{
			"name":"Deluxe Room","hotel":"heritage-palace","type":"Deluxe",
			"beds":["King"],"active":true}}]}`,
		"Intents": `{"records":[{"id":"i1","fields":{
			"intent":"breakfast_hours","phrases":"when is breakfast, breakfast time","active":true}}]}`,
		"OutputRules": `{"records":[{"id":"o1","fields":{
			"scope":"General","style":"short and warm","priority":1,"active":true}}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := tables[strings.Trim(r.URL.Path, "/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStack(t *testing.T, model domain.ChatModel) *httptest.Server {
	t.Helper()
	upstream := knowledgeUpstream(t)
	source, err := airtable.New(upstream.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	knowledge := app.NewKnowledge(source, memcache.New(), time.Minute)
	concierge := app.NewConcierge(knowledge, model, app.NewRateLimiter(20*time.Second, 12), "heritage-palace")

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Pipeline: concierge})
	api := httptest.NewServer(srv.Mux())
	t.Cleanup(api.Close)
	return api
}

type askBody struct {
	OK     bool   `json:"ok"`
	Answer string `json:"answer"`
	Meta   struct {
		Intent string `json:"intent"`
		Path   string `json:"path"`
	} `json:"meta"`
}

func ask(t *testing.T, api *httptest.Server, payload string) (int, askBody) {
	t.Helper()
	resp, err := http.Post(api.URL+"/v1/ask", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out askBody
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestE2E_DeterministicCheckIn(t *testing.T) {
	model := &scriptedModel{classification: `{"intent":"","confidence":0,"outputScope":"","note":""}`}
	api := newStack(t, model)

	code, out := ask(t, api, `{"question":"What time is check-in?"}`)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if out.Meta.Path != "deterministic:hotel_core" {
		t.Fatalf("path: %+v", out)
	}
	if !strings.Contains(out.Answer, "14:00") {
		t.Fatalf("answer must carry the stored time verbatim: %q", out.Answer)
	}
}

func TestE2E_GeneratedAnswer(t *testing.T) {
	model := &scriptedModel{
		classification: `{"intent":"breakfast_hours","confidence":0.9,"outputScope":"General","note":""}`,
		answer:         "Breakfast is served from 07:00 to 10:30.",
	}
	api := newStack(t, model)

	code, out := ask(t, api, `{"question":"Until when can I have the morning buffet?"}`)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if out.Meta.Path != "generated" || out.Meta.Intent != "breakfast_hours" {
		t.Fatalf("meta: %+v", out.Meta)
	}
	if out.Answer != "Breakfast is served from 07:00 to 10:30." {
		t.Fatalf("answer: %q", out.Answer)
	}
}

func TestE2E_PriceGuard(t *testing.T) {
	model := &scriptedModel{
		classification: `{"intent":"breakfast_hours","confidence":0.9,"outputScope":"General","note":""}`,
		answer:         "Breakfast costs 12 euros per person.",
	}
	api := newStack(t, model)

	_, out := ask(t, api, `{"question":"Until when can I have the morning buffet?"}`)
	if out.Meta.Path != "price_guard" {
		t.Fatalf("invented price must be guarded: %+v", out)
	}
	if out.Answer != app.MsgNoPrice {
		t.Fatalf("answer: %q", out.Answer)
	}
}

func TestE2E_RateLimit(t *testing.T) {
	model := &scriptedModel{classification: `{"intent":"","confidence":0,"outputScope":"","note":""}`}
	api := newStack(t, model)

	var out askBody
	for i := 0; i < 12; i++ {
		_, out = ask(t, api, `{"question":"What time is check-in?","caller":"burst-caller"}`)
	}
	if out.Meta.Path != "rate_limited" || out.Answer != app.MsgWait {
		t.Fatalf("twelfth request must be throttled: %+v", out)
	}
}
