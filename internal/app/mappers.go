package app

import (
	"strconv"
	"strings"

	"hotel_concierge/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Legacy bases disagree on field names; every variant seen in production is
// listed here so the pipeline core only ever sees the fixed internal schema.

var hotelAliases = map[string][]string{
	"slug":        {"slug", "Slug", "hotel_slug", "Hotel Slug"},
	"name":        {"name", "Name", "hotel_name", "Hotel Name", "title"},
	"description": {"description", "Description", "short_description", "About"},
	"address":     {"address", "Address", "full_address", "street_address", "location.address"},
	"phone":       {"phone", "Phone", "phone_number", "Telephone", "contact.phone"},
	"email":       {"email", "Email", "e_mail", "contact.email"},
	"website":     {"website", "Website", "web", "url", "site"},
	"maps":        {"maps_url", "Maps URL", "google_maps", "Google Maps", "maps_link"},
	"socials":     {"socials", "Socials", "social_links", "Social Links", "instagram"},
	"check_in":    {"check_in", "Check-in", "Check In", "checkin", "check_in_time"},
	"check_out":   {"check_out", "Check-out", "Check Out", "checkout", "check_out_time"},
}

var serviceAliases = map[string][]string{
	"name":        {"name", "Name", "service_name", "Service Name", "title"},
	"categories":  {"categories", "Categories", "category", "Category"},
	"description": {"description", "Description", "details", "Details", "text"},
	"hours":       {"hours", "Hours", "working_hours", "Working Hours", "schedule"},
	"hint":        {"prompt_hint", "Prompt Hint", "ai_hint", "AI Hint", "notes_internal"},
	"intents":     {"intents", "Intents", "intent", "Intent", "answers_intents"},
	"channels":    {"channels", "Channels", "channel", "Channel", "visibility"},
	"hotel":       {"hotel", "Hotel", "hotel_slug", "Hotel Slug", "hotels", "property"},
}

var roomAliases = map[string][]string{
	"name":        {"name", "Name", "room_name", "Room Name", "title"},
	"unit":        {"unit", "Unit", "unit_label", "room_number", "Number"},
	"type":        {"type", "Type", "room_type", "Room Type", "category"},
	"slug":        {"slug", "Slug", "room_slug", "Room Slug"},
	"description": {"description", "Description", "details", "text"},
	"capacity":    {"capacity", "Capacity", "max_guests", "Max Guests", "sleeps"},
	"floor":       {"floor", "Floor", "level", "Level"},
	"area":        {"area", "Area", "size", "Size", "square_meters", "m2"},
	"view":        {"view", "View", "room_view", "Room View", "outlook"},
	"beds":        {"beds", "Beds", "bed_types", "Bed Types", "bed_type", "bedding"},
	"amenities":   {"amenities", "Amenities", "facilities", "Facilities", "features"},
	"hint":        {"prompt_hint", "Prompt Hint", "ai_hint", "AI Hint", "notes_internal"},
	"intents":     {"intents", "Intents", "intent", "Intent", "answers_intents"},
	"channels":    {"channels", "Channels", "channel", "Channel", "visibility"},
	"hotel":       {"hotel", "Hotel", "hotel_slug", "Hotel Slug", "hotels", "property"},
}

var intentAliases = map[string][]string{
	"name":     {"intent", "Intent", "name", "Name", "intent_name", "Intent Name"},
	"phrases":  {"phrases", "Phrases", "examples", "Examples", "sample_questions", "Sample Questions"},
	"scope":    {"output_scope", "Output Scope", "scope", "Scope", "answer_scope"},
	"channels": {"channels", "Channels", "channel", "Channel"},
	"services": {"services", "Services", "linked_services", "Linked Services"},
	"rooms":    {"rooms", "Rooms", "linked_rooms", "Linked Rooms"},
}

var ruleAliases = map[string][]string{
	"scope":    {"scope", "Scope", "output_scope", "Output Scope"},
	"channels": {"channels", "Channels", "channel", "Channel"},
	"format":   {"format", "Format", "formatting", "Formatting"},
	"style":    {"style", "Style", "tone", "Tone"},
	"example":  {"example", "Example", "example_output", "Example Output"},
	"priority": {"priority", "Priority", "weight", "Weight"},
}

var activeAliases = []string{"active", "Active", "is_active", "enabled", "Enabled", "status"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString returns the first non-empty string among alias paths.
func firstString(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// firstStrings flattens a field that may hold a string, a comma-separated
// string, or a []any of strings/{name} objects into a clean string set.
func firstStrings(m map[string]any, aliases map[string][]string, key string) []string {
	for _, p := range aliases[key] {
		if out := flattenStrings(lookupAny(m, p)); len(out) > 0 {
			return out
		}
	}
	return nil
}

func flattenStrings(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, it := range t {
			switch e := it.(type) {
			case string:
				if s := strings.TrimSpace(e); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				if n, ok := e["name"].(string); ok && n != "" {
					out = append(out, n)
				} else if id, ok := e["id"].(string); ok && id != "" {
					out = append(out, id)
				}
			}
		}
		return out
	}
	return nil
}

// firstInt: int from several alias paths (float64/int/string).
func firstInt(m map[string]any, aliases map[string][]string, key string) int {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

// activeFlag: bool from checkbox, string, or numeric variants.
// Absent means active (legacy rows predate the flag).
func activeFlag(m map[string]any) bool {
	for _, p := range activeAliases {
		switch v := lookupAny(m, p).(type) {
		case bool:
			return v
		case string:
			s := strings.ToLower(strings.TrimSpace(v))
			if s == "" {
				continue
			}
			return s == "true" || s == "yes" || s == "active" || s == "checked" || s == "1"
		case float64:
			return v != 0
		}
	}
	return true
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

/********** record mappers **********/

func mapHotel(r domain.SourceRecord) domain.HotelRecord {
	f := r.Fields
	return domain.HotelRecord{
		ID:          r.ID,
		Slug:        strings.ToLower(firstString(f, hotelAliases, "slug")),
		Name:        firstString(f, hotelAliases, "name"),
		Description: firstString(f, hotelAliases, "description"),
		Address:     firstString(f, hotelAliases, "address"),
		Phone:       firstString(f, hotelAliases, "phone"),
		Email:       firstString(f, hotelAliases, "email"),
		Website:     firstString(f, hotelAliases, "website"),
		MapsURL:     firstString(f, hotelAliases, "maps"),
		Socials:     firstStrings(f, hotelAliases, "socials"),
		CheckIn:     firstString(f, hotelAliases, "check_in"),
		CheckOut:    firstString(f, hotelAliases, "check_out"),
		Active:      activeFlag(f),
	}
}

func mapService(r domain.SourceRecord) domain.ServiceRecord {
	f := r.Fields
	return domain.ServiceRecord{
		ID:          r.ID,
		Name:        firstString(f, serviceAliases, "name"),
		Categories:  firstStrings(f, serviceAliases, "categories"),
		Description: firstString(f, serviceAliases, "description"),
		Hours:       firstString(f, serviceAliases, "hours"),
		PromptHint:  firstString(f, serviceAliases, "hint"),
		Intents:     lowerAll(firstStrings(f, serviceAliases, "intents")),
		Channels:    lowerAll(firstStrings(f, serviceAliases, "channels")),
		HotelSlugs:  lowerAll(firstStrings(f, serviceAliases, "hotel")),
		Active:      activeFlag(f),
	}
}

func mapRoom(r domain.SourceRecord) domain.RoomRecord {
	f := r.Fields
	return domain.RoomRecord{
		ID:          r.ID,
		Name:        firstString(f, roomAliases, "name"),
		Unit:        firstString(f, roomAliases, "unit"),
		Type:        firstString(f, roomAliases, "type"),
		Slug:        strings.ToLower(firstString(f, roomAliases, "slug")),
		Description: firstString(f, roomAliases, "description"),
		Capacity:    firstInt(f, roomAliases, "capacity"),
		Floor:       firstString(f, roomAliases, "floor"),
		Area:        firstString(f, roomAliases, "area"),
		View:        firstString(f, roomAliases, "view"),
		BedTypes:    firstStrings(f, roomAliases, "beds"),
		Amenities:   firstStrings(f, roomAliases, "amenities"),
		PromptHint:  firstString(f, roomAliases, "hint"),
		Intents:     lowerAll(firstStrings(f, roomAliases, "intents")),
		Channels:    lowerAll(firstStrings(f, roomAliases, "channels")),
		HotelSlugs:  lowerAll(firstStrings(f, roomAliases, "hotel")),
		Active:      activeFlag(f),
	}
}

func mapIntentPattern(r domain.SourceRecord) domain.IntentPattern {
	f := r.Fields
	return domain.IntentPattern{
		ID:         r.ID,
		Name:       strings.ToLower(firstString(f, intentAliases, "name")),
		Phrases:    firstStrings(f, intentAliases, "phrases"),
		Scope:      defaultScope(firstString(f, intentAliases, "scope")),
		Channels:   lowerAll(firstStrings(f, intentAliases, "channels")),
		ServiceIDs: firstStrings(f, intentAliases, "services"),
		RoomIDs:    firstStrings(f, intentAliases, "rooms"),
		Active:     activeFlag(f),
	}
}

func mapOutputRule(r domain.SourceRecord) domain.OutputRule {
	f := r.Fields
	return domain.OutputRule{
		ID:       r.ID,
		Scope:    defaultScope(firstString(f, ruleAliases, "scope")),
		Channels: lowerAll(firstStrings(f, ruleAliases, "channels")),
		Format:   firstString(f, ruleAliases, "format"),
		Style:    firstString(f, ruleAliases, "style"),
		Example:  firstString(f, ruleAliases, "example"),
		Priority: firstInt(f, ruleAliases, "priority"),
		Active:   activeFlag(f),
	}
}

func defaultScope(s string) string {
	if s == "" {
		return ScopeGeneral
	}
	return s
}
