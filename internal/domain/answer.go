package domain

// AskRequest is the pipeline entry point input. Caller is an opaque identity
// used only for rate limiting (typically the remote IP).
type AskRequest struct {
	Question  string
	HotelSlug string
	Caller    string
}

// AskResult is what the boundary layer returns to the widget.
type AskResult struct {
	OK     bool
	Answer string
	Meta   AskMeta
}

// AskMeta carries diagnostics; observability data, not a stable contract.
type AskMeta struct {
	Intent     string
	Confidence float64
	Scope      string
	Path       string // which branch produced the answer
	Matched    int
	Fallback   int
	ElapsedMS  int64
}

// IntentResolution is the router's verdict for one question.
type IntentResolution struct {
	Intent     string
	Confidence float64
	Scope      string
	Note       string
}

// ContextRecord is a flattened service-or-room view used for lexical scoring
// and for serializing knowledge into the model prompt.
type ContextRecord struct {
	Kind       string // "service" or "room"
	Name       string
	Text       string
	PromptHint string
	Intents    []string
}

// Bundle is everything the pipeline retrieved for one question.
type Bundle struct {
	Hotel    *HotelRecord
	Services []ServiceRecord
	Rooms    []RoomRecord
	Matched  []ContextRecord // intent-matched records, highest priority
	Fallback []ContextRecord // lexical top hits, only when Matched is empty
	All      []ContextRecord
}
