package app

import (
	"reflect"
	"testing"

	"hotel_concierge/internal/domain"
)

func TestMapHotel_AliasVariants(t *testing.T) {
	rec := domain.SourceRecord{ID: "rec1", Fields: map[string]any{
		"Hotel Name": "Heritage Palace",
		"Slug":       "Heritage-Palace",
		"Check In":   "14:00",
		"Check-out":  "11:00",
		"phone":      "+385 21 000 000",
	}}
	h := mapHotel(rec)
	if h.Name != "Heritage Palace" || h.Slug != "heritage-palace" {
		t.Fatalf("unexpected identity: %+v", h)
	}
	if h.CheckIn != "14:00" || h.CheckOut != "11:00" {
		t.Fatalf("check times not resolved: %+v", h)
	}
	if !h.Active {
		t.Fatalf("absent active flag should default to active")
	}
}

func TestMapRoom_FlattensSets(t *testing.T) {
	rec := domain.SourceRecord{ID: "rec2", Fields: map[string]any{
		"Room Name":  "Deluxe Room",
		"Room Type":  "Deluxe",
		"Beds":       []any{"King", "Sofa bed"},
		"Amenities":  "WiFi, Minibar , Safe",
		"Channels":   []any{"Web", "app"},
		"hotels":     []any{"heritage-palace"},
		"Max Guests": 3.0,
		"is_active":  "yes",
	}}
	r := mapRoom(rec)
	if !reflect.DeepEqual(r.BedTypes, []string{"King", "Sofa bed"}) {
		t.Fatalf("beds: %v", r.BedTypes)
	}
	if !reflect.DeepEqual(r.Amenities, []string{"WiFi", "Minibar", "Safe"}) {
		t.Fatalf("amenities: %v", r.Amenities)
	}
	if !reflect.DeepEqual(r.Channels, []string{"web", "app"}) {
		t.Fatalf("channels should be lowercased: %v", r.Channels)
	}
	if !reflect.DeepEqual(r.HotelSlugs, []string{"heritage-palace"}) {
		t.Fatalf("hotel slugs: %v", r.HotelSlugs)
	}
	if r.Capacity != 3 {
		t.Fatalf("capacity: %d", r.Capacity)
	}
	if !r.Active {
		t.Fatalf("string active variants should map to true")
	}
}

func TestMapIntentPattern_Defaults(t *testing.T) {
	rec := domain.SourceRecord{ID: "rec3", Fields: map[string]any{
		"Intent":  "Breakfast_Hours",
		"Phrases": "when is breakfast, breakfast time",
	}}
	p := mapIntentPattern(rec)
	if p.Name != "breakfast_hours" {
		t.Fatalf("intent names are lowercase: %q", p.Name)
	}
	if p.Scope != ScopeGeneral {
		t.Fatalf("missing scope should default to %q, got %q", ScopeGeneral, p.Scope)
	}
	if len(p.Phrases) != 2 {
		t.Fatalf("phrases: %v", p.Phrases)
	}
}

func TestVisibilityAndOwnership(t *testing.T) {
	if !domain.VisibleOnWeb(nil) {
		t.Fatalf("empty channel set is the legacy visible-everywhere default")
	}
	if domain.VisibleOnWeb([]string{"app"}) {
		t.Fatalf("non-empty set without web marker must be hidden")
	}
	if !domain.VisibleOnWeb([]string{"app", "web"}) {
		t.Fatalf("web marker means visible")
	}
	if domain.OwnedBy([]string{"other-hotel"}, "heritage-palace") {
		t.Fatalf("ownership requires exact slug membership")
	}
}
