package domain

// HotelRecord is the fixed internal shape of a hotel row in the knowledge
// source. Records are owned externally; the pipeline only reads them.
type HotelRecord struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Address     string
	Phone       string
	Email       string
	Website     string
	MapsURL     string
	Socials     []string
	CheckIn     string
	CheckOut    string
	Active      bool
}

type ServiceRecord struct {
	ID          string
	Name        string
	Categories  []string
	Description string
	Hours       string
	PromptHint  string
	Intents     []string
	Channels    []string
	HotelSlugs  []string
	Active      bool
}

type RoomRecord struct {
	ID          string
	Name        string
	Unit        string
	Type        string
	Slug        string
	Description string
	Capacity    int
	Floor       string
	Area        string
	View        string
	BedTypes    []string
	Amenities   []string
	PromptHint  string
	Intents     []string
	Channels    []string
	HotelSlugs  []string
	Active      bool
}

// IntentPattern is a named question category with example phrases used only
// for lexical scoring, never shown to guests.
type IntentPattern struct {
	ID         string
	Name       string
	Phrases    []string
	Scope      string // output scope, e.g. "General", "Room Guide"
	Channels   []string
	ServiceIDs []string
	RoomIDs    []string
	Active     bool
}

type OutputRule struct {
	ID       string
	Scope    string
	Channels []string
	Format   string
	Style    string
	Example  string
	Priority int // higher wins on scope ties
	Active   bool
}

// VisibleOnWeb reports whether a channel set allows the web widget.
// An empty set is the legacy default: visible everywhere.
func VisibleOnWeb(channels []string) bool {
	if len(channels) == 0 {
		return true
	}
	for _, c := range channels {
		if c == ChannelWeb {
			return true
		}
	}
	return false
}

// OwnedBy reports whether a flattened slug set contains the target slug exactly.
func OwnedBy(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}
