// Package airtable reads the hotel knowledge base over its REST API.
package airtable

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_concierge/internal/adapters/observability"
	"hotel_concierge/internal/domain"
)

// Client reads records from an Airtable-style tabular REST API. It is the
// only collaborator that knows the wire format; everything above it sees
// domain.SourceRecord.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var _ domain.KnowledgeSource = (*Client)(nil)

type recordPayload struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listPayload struct {
	Records []recordPayload `json:"records"`
	Offset  string          `json:"offset"`
}

// ListRecords pages through a table. The filter is a simple equality set
// rendered as a formula; nil means the whole table.
func (c *Client) ListRecords(ctx context.Context, table string, filter map[string]string) ([]domain.SourceRecord, error) {
	start := time.Now()
	var out []domain.SourceRecord
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", "100")
		if f := equalityFormula(filter); f != "" {
			q.Set("filterByFormula", f)
		}
		if offset != "" {
			q.Set("offset", offset)
		}
		u := c.base + "/" + url.PathEscape(table) + "?" + q.Encode()

		var page listPayload
		if err := c.get(ctx, u, &page); err != nil {
			observability.ObserveExternal("airtable", "list", 0, time.Since(start))
			return nil, err
		}
		for _, r := range page.Records {
			out = append(out, domain.SourceRecord{ID: r.ID, Fields: r.Fields})
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	observability.ObserveExternal("airtable", "list", http.StatusOK, time.Since(start))
	return out, nil
}

// GetRecord fetches a single record; missing ids map to domain.ErrNotFound.
func (c *Client) GetRecord(ctx context.Context, table, id string) (domain.SourceRecord, error) {
	start := time.Now()
	u := c.base + "/" + url.PathEscape(table) + "/" + url.PathEscape(id)
	var rec recordPayload
	if err := c.get(ctx, u, &rec); err != nil {
		observability.ObserveExternal("airtable", "get", 0, time.Since(start))
		return domain.SourceRecord{}, err
	}
	observability.ObserveExternal("airtable", "get", http.StatusOK, time.Since(start))
	return domain.SourceRecord{ID: rec.ID, Fields: rec.Fields}, nil
}

// equalityFormula renders {field}='value' terms, AND-ed when there are
// several. Values have single quotes escaped.
func equalityFormula(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}
	terms := make([]string, 0, len(filter))
	for k, v := range filter {
		v = strings.ReplaceAll(v, "'", "\\'")
		terms = append(terms, fmt.Sprintf("{%s}='%s'", k, v))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return "AND(" + strings.Join(terms, ",") + ")"
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-concierge/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return domain.ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
