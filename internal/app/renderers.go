package app

import (
	"sort"
	"strconv"
	"strings"

	"hotel_concierge/internal/domain"
)

// Fixed guest-facing messages. Every renderer prefers pointing to reception
// over fabricating a value.
const (
	MsgNoInfo    = "I don't have verified information about that at the moment. Please contact the reception and they will be happy to help."
	MsgWait      = "You're sending messages a little too quickly. Please wait a moment and try again."
	MsgNoPrice   = "I don't have verified price information available. For current rates, please contact the reception directly."
	MsgWhichRoom = "Please tell me the exact names of the two rooms you'd like me to compare."
)

// Question is the pre-normalized view of one incoming question, shared by
// every detector so normalization happens once.
type Question struct {
	Raw    string
	Norm   string
	Tokens []string
}

func NewQuestion(raw string) Question {
	return Question{Raw: raw, Norm: Normalize(raw), Tokens: Tokenize(raw)}
}

func (q Question) hasToken(words ...string) bool {
	for _, w := range words {
		for _, t := range q.Tokens {
			if t == w {
				return true
			}
		}
	}
	return false
}

func (q Question) hasPhrase(phrases ...string) bool {
	for _, p := range phrases {
		if containsPhrase(q.Norm, p) {
			return true
		}
	}
	return false
}

// Renderer pairs a question-shape detector with a template that answers it
// from structured fields alone. None of these ever calls the model.
type Renderer struct {
	Name   string
	Detect func(q Question, b domain.Bundle) bool
	Render func(q Question, b domain.Bundle) string
}

// Renderers returns the fixed-priority deterministic answer paths.
func Renderers() []Renderer {
	return []Renderer{
		{Name: "hotel_core", Detect: detectHotelCore, Render: renderHotelCore},
		{Name: "room_types", Detect: detectRoomTypes, Render: renderRoomTypes},
		{Name: "rooms_by_view", Detect: detectRoomsByView, Render: renderRoomsByView},
		{Name: "room_comparison", Detect: detectComparison, Render: renderComparison},
		{Name: "room_amenities", Detect: detectAmenities, Render: renderAmenities},
		{Name: "bed_types", Detect: detectBedTypes, Render: renderBedTypes},
	}
}

/********** hotel contact / core facts **********/

var hotelCorePhrases = []string{
	"contact", "phone", "telephone", "call you", "email", "e mail",
	"address", "where are you located", "how to find you", "google maps", "maps link",
	"check in", "check out", "checkin", "checkout", "arrival time", "departure time",
}

func detectHotelCore(q Question, _ domain.Bundle) bool {
	return q.hasPhrase(hotelCorePhrases...)
}

func renderHotelCore(_ Question, b domain.Bundle) string {
	h := b.Hotel
	if h == nil {
		return MsgNoInfo
	}
	var lines []string
	addLine := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	addLine("Phone", h.Phone)
	addLine("Email", h.Email)
	addLine("Address", h.Address)
	addLine("Website", h.Website)
	addLine("Map", h.MapsURL)
	addLine("Check-in", h.CheckIn)
	addLine("Check-out", h.CheckOut)
	if len(lines) == 0 {
		return MsgNoInfo
	}
	return strings.Join(lines, "\n")
}

/********** room types **********/

var roomTypesPhrases = []string{
	"room types", "types of rooms", "kinds of rooms", "what rooms",
	"which rooms do you have", "what kind of rooms", "room options", "list of rooms",
}

func detectRoomTypes(q Question, _ domain.Bundle) bool {
	return q.hasPhrase(roomTypesPhrases...)
}

func renderRoomTypes(_ Question, b domain.Bundle) string {
	if len(b.Rooms) == 0 {
		return MsgNoInfo
	}
	lines := make([]string, 0, len(b.Rooms)+1)
	lines = append(lines, "Our rooms:")
	for _, r := range b.Rooms {
		lines = append(lines, "- "+roomLine(r))
	}
	return strings.Join(lines, "\n")
}

func roomLine(r domain.RoomRecord) string {
	parts := []string{r.Name}
	if r.Type != "" {
		parts = append(parts, r.Type)
	}
	if r.View != "" {
		parts = append(parts, "view: "+r.View)
	}
	if len(r.BedTypes) > 0 {
		parts = append(parts, "beds: "+strings.Join(r.BedTypes, ", "))
	}
	return strings.Join(parts, " — ")
}

/********** rooms by view **********/

var viewLandmarks = []string{
	"unesco", "palace", "peristyle", "peristil", "cathedral", "katedrala",
	"sea", "old town", "riva", "bell tower",
}

func detectRoomsByView(q Question, _ domain.Bundle) bool {
	if !q.hasToken("view", "views", "pogled") && !q.hasPhrase("overlooking") {
		// landmark plus "room" still counts as a view question
		return q.hasToken("room", "rooms") && q.hasPhrase(viewLandmarks...)
	}
	return true
}

func renderRoomsByView(q Question, b domain.Bundle) string {
	if len(b.Rooms) == 0 {
		return MsgNoInfo
	}
	var wanted []string
	for _, lm := range viewLandmarks {
		if containsPhrase(q.Norm, lm) {
			wanted = append(wanted, lm)
		}
	}
	var hits []domain.RoomRecord
	for _, r := range b.Rooms {
		view := Normalize(r.View)
		if view == "" {
			continue
		}
		if len(wanted) == 0 {
			hits = append(hits, r)
			continue
		}
		for _, lm := range wanted {
			if strings.Contains(view, lm) {
				hits = append(hits, r)
				break
			}
		}
	}
	if len(hits) == 0 {
		return "None of our rooms have that particular view. " + MsgNoInfo
	}
	lines := make([]string, 0, len(hits)+1)
	lines = append(lines, "Rooms with that view:")
	for _, r := range hits {
		lines = append(lines, "- "+r.Name+" — "+r.View)
	}
	return strings.Join(lines, "\n")
}

/********** room amenities **********/

var amenityPhrases = []string{
	"amenities", "amenity", "facilities", "equipped with", "what does the room have",
	"features", "in the room",
}

func detectAmenities(q Question, _ domain.Bundle) bool {
	return q.hasPhrase(amenityPhrases...)
}

// roomMatchThreshold: a room is "the one the guest means" only when matched
// identity tokens add up to at least this many characters.
const roomMatchThreshold = 3

// bestRoomMatch resolves a specific room from name/type/slug substrings of
// the question. Score is the total length of matched identity tokens.
func bestRoomMatch(norm string, rooms []domain.RoomRecord) (*domain.RoomRecord, int) {
	var best *domain.RoomRecord
	bestScore := 0
	for i := range rooms {
		score := roomMatchScore(norm, rooms[i])
		if score > bestScore {
			bestScore = score
			best = &rooms[i]
		}
	}
	if bestScore < roomMatchThreshold {
		return nil, bestScore
	}
	return best, bestScore
}

var genericRoomWords = map[string]struct{}{
	"room": {}, "rooms": {}, "the": {}, "and": {}, "with": {}, "apartment": {},
}

func roomMatchScore(norm string, r domain.RoomRecord) int {
	score := 0
	seen := map[string]struct{}{}
	for _, t := range Tokenize(r.Name + " " + r.Type + " " + r.Slug) {
		if len(t) < 3 {
			continue
		}
		if _, generic := genericRoomWords[t]; generic {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if containsToken(norm, t) {
			score += len(t)
		}
	}
	return score
}

func renderAmenities(q Question, b domain.Bundle) string {
	if len(b.Rooms) == 0 {
		return MsgNoInfo
	}
	if room, _ := bestRoomMatch(q.Norm, b.Rooms); room != nil {
		if len(room.Amenities) == 0 {
			return MsgNoInfo
		}
		return room.Name + " amenities:\n- " + strings.Join(room.Amenities, "\n- ")
	}
	// no specific room named: union across all rooms
	seen := map[string]struct{}{}
	var union []string
	for _, r := range b.Rooms {
		for _, a := range r.Amenities {
			key := strings.ToLower(a)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, a)
		}
	}
	if len(union) == 0 {
		return MsgNoInfo
	}
	sort.Strings(union)
	return "Room amenities include:\n- " + strings.Join(union, "\n- ")
}

/********** bed types **********/

// True word-boundary tokens only: "parking" must never trip this through the
// embedded "king".
var bedTokens = []string{"king", "twin", "queen", "bed", "beds", "krevet", "kreveti"}

func detectBedTypes(q Question, _ domain.Bundle) bool {
	return q.hasToken(bedTokens...)
}

func renderBedTypes(_ Question, b domain.Bundle) string {
	if len(b.Rooms) == 0 {
		return MsgNoInfo
	}
	var lines []string
	for _, r := range b.Rooms {
		if len(r.BedTypes) == 0 {
			continue
		}
		lines = append(lines, "- "+r.Name+": "+strings.Join(r.BedTypes, ", "))
	}
	if len(lines) == 0 {
		return MsgNoInfo
	}
	return "Bed configuration per room:\n" + strings.Join(lines, "\n")
}

/********** room-to-room comparison **********/

var comparisonSeparators = []string{
	" vs ", " versus ", " compared to ", " compare ", " difference between ",
	" or ", " and ",
}

func detectComparison(q Question, _ domain.Bundle) bool {
	return q.hasToken("vs", "versus") || q.hasPhrase("difference", "compare", "comparison")
}

func renderComparison(q Question, b domain.Bundle) string {
	if len(b.Rooms) == 0 {
		return MsgNoInfo
	}
	first, second := splitComparison(q.Norm)
	a, _ := bestRoomMatch(first, b.Rooms)
	z, _ := bestRoomMatch(second, b.Rooms)
	if a == nil || z == nil || a.ID == z.ID {
		// don't guess which rooms the guest means
		return MsgWhichRoom
	}

	type field struct {
		label  string
		va, vz string
	}
	fields := []field{
		{"Type", a.Type, z.Type},
		{"Size", a.Area, z.Area},
		{"Capacity", capLabel(a.Capacity), capLabel(z.Capacity)},
		{"Floor", a.Floor, z.Floor},
		{"View", a.View, z.View},
		{"Beds", strings.Join(a.BedTypes, ", "), strings.Join(z.BedTypes, ", ")},
	}
	var lines []string
	for _, f := range fields {
		if f.va == f.vz {
			continue // identical fields are omitted, only differences matter
		}
		lines = append(lines, "- "+f.label+": "+a.Name+" — "+orNone(f.va)+"; "+z.Name+" — "+orNone(f.vz))
	}
	if len(lines) == 0 {
		return a.Name + " and " + z.Name + " have the same type, size, capacity, floor, view and beds."
	}
	return "Differences between " + a.Name + " and " + z.Name + ":\n" + strings.Join(lines, "\n")
}

// splitComparison cuts the question into the two segments around the first
// separator found, so each side can be resolved to a room independently.
func splitComparison(norm string) (string, string) {
	s := strings.TrimPrefix(norm, "difference between ")
	s = strings.TrimPrefix(s, "what is the difference between ")
	for _, sep := range comparisonSeparators {
		if i := strings.Index(s, sep); i > 0 {
			return s[:i], s[i+len(sep):]
		}
	}
	return s, ""
}

func capLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n) + " guests"
}

func orNone(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
