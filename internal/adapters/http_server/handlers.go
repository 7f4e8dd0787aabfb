package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_concierge/internal/domain"
)

// Asker is what the handler needs from the pipeline.
type Asker interface {
	Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error)
}

type Handlers struct{ Pipeline Asker }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type askPayload struct {
	Question string `json:"question"`
	Hotel    string `json:"hotel,omitempty"`
	Caller   string `json:"caller,omitempty"`
}

type askResponse struct {
	OK     bool    `json:"ok"`
	Answer string  `json:"answer"`
	Meta   askMeta `json:"meta"`
}

type askMeta struct {
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence"`
	Scope      string  `json:"scope,omitempty"`
	Path       string  `json:"path"`
	Matched    int     `json:"matched"`
	Fallback   int     `json:"fallback"`
	ElapsedMS  int64   `json:"elapsed_ms"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/ask", h.ask)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) ask(w http.ResponseWriter, r *http.Request) {
	var in askPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON object")
		return
	}
	if strings.TrimSpace(in.Question) == "" {
		writeProblem(w, http.StatusBadRequest, "Missing question", "question text is required")
		return
	}
	caller := in.Caller
	if caller == "" {
		caller = remoteIP(r)
	}

	out, err := h.Pipeline.Ask(r.Context(), domain.AskRequest{
		Question:  in.Question,
		HotelSlug: in.Hotel,
		Caller:    caller,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuestion) {
			writeProblem(w, http.StatusBadRequest, "Missing question", "question text is required")
			return
		}
		log.Error().Err(err).Msg("ask pipeline failed")
		writeProblem(w, http.StatusBadGateway, "Upstream failure", "please try again shortly")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := askResponse{
		OK:     out.OK,
		Answer: out.Answer,
		Meta: askMeta{
			Intent:     out.Meta.Intent,
			Confidence: out.Meta.Confidence,
			Scope:      out.Meta.Scope,
			Path:       out.Meta.Path,
			Matched:    out.Meta.Matched,
			Fallback:   out.Meta.Fallback,
			ElapsedMS:  out.Meta.ElapsedMS,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write ask response")
	}
}
