package memcache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Name string `json:"name"`
}

func TestCache_RoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	if err := c.Set(ctx, "k", payload{Name: "Deluxe Room"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "Deluxe Room" {
		t.Fatalf("got %+v", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New()
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	now := base
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", payload{Name: "x"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got payload
	if ok, _ := c.Get(ctx, "k", &got); !ok {
		t.Fatalf("fresh entry must hit")
	}
	now = base.Add(60 * time.Second)
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("entry at its TTL boundary must miss")
	}
}

func TestCache_MissAndDel(t *testing.T) {
	c := New()
	ctx := context.Background()

	var got payload
	if ok, err := c.Get(ctx, "absent", &got); ok || err != nil {
		t.Fatalf("absent key: ok=%v err=%v", ok, err)
	}
	_ = c.Set(ctx, "k", payload{Name: "x"}, 60)
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("deleted key must miss")
	}
}
