package app_test

import (
	"context"
	"errors"
	"sync/atomic"

	"hotel_concierge/internal/domain"
)

// ---- fake knowledge source ----

type fakeSource struct {
	tables map[string][]domain.SourceRecord
	lists  int32
	gets   int32
	err    error
}

func (f *fakeSource) ListRecords(ctx context.Context, table string, filter map[string]string) ([]domain.SourceRecord, error) {
	atomic.AddInt32(&f.lists, 1)
	if f.err != nil {
		return nil, f.err
	}
	recs := f.tables[table]
	if len(filter) == 0 {
		return recs, nil
	}
	var out []domain.SourceRecord
	for _, r := range recs {
		match := true
		for k, v := range filter {
			if s, _ := r.Fields[k].(string); s != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) GetRecord(ctx context.Context, table, id string) (domain.SourceRecord, error) {
	atomic.AddInt32(&f.gets, 1)
	if f.err != nil {
		return domain.SourceRecord{}, f.err
	}
	for _, r := range f.tables[table] {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.SourceRecord{}, domain.ErrNotFound
}

// ---- fake chat model ----

type fakeModel struct {
	completions int32
	classifies  int32
	reply       string
	jsonReply   string
	err         error
}

func (m *fakeModel) Complete(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&m.completions, 1)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *fakeModel) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	atomic.AddInt32(&m.classifies, 1)
	if m.err != nil {
		return "", m.err
	}
	return m.jsonReply, nil
}

func (m *fakeModel) calls() int32 {
	return atomic.LoadInt32(&m.completions) + atomic.LoadInt32(&m.classifies)
}

var errBoom = errors.New("boom")

// ---- record fixtures ----

func hotelRow(slug string) domain.SourceRecord {
	return domain.SourceRecord{ID: "rec-hotel-" + slug, Fields: map[string]any{
		"slug":      slug,
		"name":      "Heritage Palace",
		"address":   "Obala 1, Split",
		"phone":     "+385 21 000 000",
		"email":     "info@heritage.example",
		"Check-in":  "14:00",
		"Check-out": "11:00",
		"active":    true,
	}}
}

func serviceRow(id, name, slug string, extra map[string]any) domain.SourceRecord {
	f := map[string]any{
		"name":        name,
		"hotel":       slug,
		"description": name + " service",
		"active":      true,
	}
	for k, v := range extra {
		f[k] = v
	}
	return domain.SourceRecord{ID: id, Fields: f}
}

func roomRow(id, name, slug string, extra map[string]any) domain.SourceRecord {
	f := map[string]any{
		"name":   name,
		"hotel":  slug,
		"active": true,
	}
	for k, v := range extra {
		f[k] = v
	}
	return domain.SourceRecord{ID: id, Fields: f}
}
