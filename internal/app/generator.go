package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

// Generator produces a model answer from retrieved knowledge only. It is
// invoked strictly after every deterministic renderer has declined.
type Generator struct {
	model domain.ChatModel
}

func NewGenerator(model domain.ChatModel) *Generator { return &Generator{model: model} }

const generatorRules = `You are the website assistant of a small hotel.
Non-negotiable rules:
- Answer questions about the hotel ONLY from the knowledge block supplied below.
- If the knowledge block does not contain the answer, say you don't have that
  information and suggest contacting the reception. Never guess.
- Never invent prices, policies, schedules or contact details.
- Keep answers short and friendly. Render enumerations as lists.
- Keep names and labels from the knowledge block exactly as written.`

// SystemPrompt assembles the strict instruction, optionally extended with the
// output-style rule that matches the resolved scope.
func SystemPrompt(rule *domain.OutputRule) string {
	if rule == nil {
		return generatorRules
	}
	var sb strings.Builder
	sb.WriteString(generatorRules)
	if rule.Format != "" {
		sb.WriteString("\nFormatting: " + rule.Format)
	}
	if rule.Style != "" {
		sb.WriteString("\nStyle: " + rule.Style)
	}
	if rule.Example != "" {
		sb.WriteString("\nExample of a good answer:\n" + rule.Example)
	}
	return sb.String()
}

// SerializeBundle renders the hotel-core block plus the retrieved records.
// Intent-matched records take priority; the lexical fallback set is used only
// when nothing matched. The same text is later given to the price guard, so
// everything the model saw is also what the guard audits.
func SerializeBundle(b domain.Bundle) string {
	var sb strings.Builder
	sb.WriteString("## Hotel\n")
	if h := b.Hotel; h != nil {
		writeKV(&sb, "Name", h.Name)
		writeKV(&sb, "Description", h.Description)
		writeKV(&sb, "Address", h.Address)
		writeKV(&sb, "Phone", h.Phone)
		writeKV(&sb, "Email", h.Email)
		writeKV(&sb, "Website", h.Website)
		writeKV(&sb, "Map", h.MapsURL)
		writeKV(&sb, "Check-in", h.CheckIn)
		writeKV(&sb, "Check-out", h.CheckOut)
	} else {
		sb.WriteString("(no hotel record)\n")
	}

	records := b.Matched
	if len(records) == 0 {
		records = b.Fallback
	}
	if len(records) > 0 {
		sb.WriteString("\n## Records\n")
		for _, r := range records {
			sb.WriteString("### " + r.Name + " (" + r.Kind + ")\n")
			if r.Text != "" {
				sb.WriteString(r.Text + "\n")
			}
			if r.PromptHint != "" {
				sb.WriteString("Note: " + r.PromptHint + "\n")
			}
		}
	}
	return sb.String()
}

func writeKV(sb *strings.Builder, k, v string) {
	if v != "" {
		sb.WriteString(k + ": " + v + "\n")
	}
}

// Answer runs one model completion over the serialized knowledge. The caller
// passes the serialized bundle so the guard layer can audit the same text.
func (g *Generator) Answer(ctx context.Context, question, knowledge string, rule *domain.OutputRule) (string, error) {
	user := "Knowledge:\n" + knowledge + "\nGuest question: " + question
	start := time.Now()
	out, err := g.model.Complete(ctx, SystemPrompt(rule), user)
	observability.ObserveModel("generate", err, time.Since(start))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		log.Warn().Msg("model returned an empty answer")
	}
	return out, nil
}
