package app

import (
	"strings"
	"sync"
	"time"

	"hotel_concierge/internal/domain"
)

/********** fixed-window rate limiter **********/

// RateLimiter counts requests per caller inside a fixed window. The counter
// map is last-write-wins under a single mutex; see the concurrency notes in
// the service docs. The request that reaches max inside a window is refused.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string]*hitWindow
	now    func() time.Time
}

type hitWindow struct {
	start time.Time
	n     int
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	if window <= 0 {
		window = 20 * time.Second
	}
	if max <= 0 {
		max = 12
	}
	return &RateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string]*hitWindow),
		now:    time.Now,
	}
}

func (l *RateLimiter) Allow(caller string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	w := l.hits[caller]
	if w == nil || now.Sub(w.start) >= l.window {
		l.hits[caller] = &hitWindow{start: now, n: 1}
		return true
	}
	w.n++
	return w.n < l.max
}

/********** hard stop for ungrounded hotel questions **********/

// Questions that are clearly about this hotel must never reach the model when
// no verified data exists for them.
var hotelSpecificKeywords = []string{
	"room", "rooms", "suite", "apartment", "price", "rate", "rates", "cost",
	"breakfast", "parking", "check in", "check out", "wifi", "pool", "spa",
	"bed", "beds", "amenities", "reservation", "book", "booking", "hotel",
	"reception", "minibar", "balcony",
}

// Generic city or landmark questions are fine to answer generally even
// without hotel records.
var genericCityKeywords = []string{
	"split", "diocletian", "palace", "peristyle", "riva", "old town",
	"beach", "museum", "restaurant", "ferry", "airport", "weather", "city",
}

// NeedsHardStop reports whether the question is hotel-specific while the
// retrieved bundle holds nothing verifiable to ground an answer in.
func NeedsHardStop(norm string, b domain.Bundle) bool {
	if b.Hotel != nil || len(b.Matched) > 0 || len(b.Fallback) > 0 {
		return false
	}
	hotelish := false
	for _, kw := range hotelSpecificKeywords {
		if containsPhrase(norm, kw) {
			hotelish = true
			break
		}
	}
	if !hotelish {
		return false
	}
	for _, kw := range genericCityKeywords {
		if containsPhrase(norm, kw) {
			return false
		}
	}
	return true
}

/********** price / currency hallucination guard **********/

var currencySymbols = []string{"€", "$", "£"}

var currencyWords = []string{"eur", "euro", "euros", "usd", "dollar", "dollars", "gbp", "hrk", "kuna"}

var pricePhrases = []string{"per night", "a night", "night rate", "nightly rate", "per person"}

func mentionsPrice(text string) bool {
	lower := strings.ToLower(text)
	for _, sym := range currencySymbols {
		if strings.Contains(lower, sym) {
			return true
		}
	}
	norm := Normalize(text)
	for _, w := range currencyWords {
		if containsToken(norm, w) {
			return true
		}
	}
	// phrases must sit on token boundaries ("nightclub" is not "a night")
	padded := " " + norm + " "
	for _, p := range pricePhrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// GuardPrice replaces a generated answer that quotes prices or currency the
// supplied knowledge never mentioned. Coarse, but auditable: the knowledge
// text is exactly what the generator saw.
func GuardPrice(answer, knowledge string) (string, bool) {
	if !mentionsPrice(answer) {
		return answer, false
	}
	if mentionsPrice(knowledge) {
		return answer, false
	}
	return MsgNoPrice, true
}
