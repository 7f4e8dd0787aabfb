package domain

import (
	"context"
	"errors"
)

// Table names in the external knowledge source.
const (
	TableHotels   = "Hotels"
	TableServices = "Services"
	TableRooms    = "Rooms"
	TableIntents  = "Intents"
	TableRules    = "OutputRules"
)

// ChannelWeb marks records visible to the website widget.
const ChannelWeb = "web"

// SourceRecord is a raw row from the knowledge source. Field names vary
// across legacy bases; the app layer resolves them through alias tables.
type SourceRecord struct {
	ID     string
	Fields map[string]any
}

// KnowledgeSource is the tabular record store the pipeline reads from.
type KnowledgeSource interface {
	// ListRecords returns all records of a table, optionally narrowed by an
	// equality filter (field name -> required value). Pagination is the
	// implementation's concern; callers always get the full result.
	ListRecords(ctx context.Context, table string, filter map[string]string) ([]SourceRecord, error)
	// GetRecord fetches one record by id. Missing ids yield ErrNotFound.
	GetRecord(ctx context.Context, table, id string) (SourceRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ChatModel is a stateless text-completion function. Implementations must
// surface upstream overload as ErrOverloaded so the pipeline can degrade to
// the "please wait" message instead of a hard failure.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// CompleteJSON asks for a JSON object response and returns the raw JSON text.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

var (
	ErrNotFound      = errors.New("knowledge: record not found")
	ErrUnauthorized  = errors.New("knowledge: unauthorized")
	ErrForbidden     = errors.New("knowledge: forbidden")
	ErrOverloaded    = errors.New("model: overloaded")
	ErrEmptyQuestion = errors.New("ask: question text is required")
)
