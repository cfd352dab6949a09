package emby

import (
	"strings"
	"time"
)

// NameID is a named reference such as a studio.
type NameID struct {
	Name string `json:"Name"`
	ID   string `json:"Id,omitempty"`
}

// Person is a cast or crew member of an item.
type Person struct {
	Name string `json:"Name"`
	ID   string `json:"Id,omitempty"`
	// Type is the role kind, e.g. "Actor" or "Director".
	Type string `json:"Type"`
	Role string `json:"Role,omitempty"`
}

const (
	PersonActor    = "Actor"
	PersonDirector = "Director"
)

// Item is a catalog entry as returned by GET /Items.
type Item struct {
	ID              string            `json:"Id"`
	Name            string            `json:"Name"`
	OriginalTitle   string            `json:"OriginalTitle,omitempty"`
	Overview        string            `json:"Overview,omitempty"`
	Type            string            `json:"Type"`
	DateCreated     string            `json:"DateCreated,omitempty"`
	PremiereDate    string            `json:"PremiereDate,omitempty"`
	ProductionYear  int               `json:"ProductionYear,omitempty"`
	CommunityRating float64           `json:"CommunityRating,omitempty"`
	ProviderIds     map[string]string `json:"ProviderIds,omitempty"`
	Genres          []string          `json:"Genres,omitempty"`
	Studios         []NameID          `json:"Studios,omitempty"`
	People          []Person          `json:"People,omitempty"`
	Path            string            `json:"Path,omitempty"`
	ImageTags       map[string]string `json:"ImageTags,omitempty"`
}

// PeopleOfType returns the names of people with the given role kind, in order.
func (i Item) PeopleOfType(kind string) []string {
	names := []string{}
	for _, p := range i.People {
		if p.Type == kind && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

// StudioNames returns the studio names in order.
func (i Item) StudioNames() []string {
	names := make([]string, 0, len(i.Studios))
	for _, s := range i.Studios {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// Premiere returns the parsed premiere date, or nil if absent or unparsable.
func (i Item) Premiere() *time.Time {
	return ParseDate(i.PremiereDate)
}

// Created returns the parsed date the item was added, or nil.
func (i Item) Created() *time.Time {
	return ParseDate(i.DateCreated)
}

// ParseDate parses the timestamps Emby emits. They carry up to seven
// fractional digits and sometimes no zone designator.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.9999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ItemQuery selects items for GET /Items.
type ItemQuery struct {
	Recursive        bool
	IncludeItemTypes []string
	Fields           []string
	SortBy           string
	SortOrder        string
	// ParentID limits the query to one library. Empty means all.
	ParentID string
}

// DefaultSyncQuery returns the query used by a reconciliation pass: every
// movie and series, with the fields the mirror stores, sorted by name.
func DefaultSyncQuery() ItemQuery {
	return ItemQuery{
		Recursive:        true,
		IncludeItemTypes: []string{"Movie", "Series"},
		Fields: []string{
			"Overview", "Genres", "Studios", "ProviderIds", "DateCreated",
			"People", "Path", "PremiereDate", "ProductionYear",
		},
		SortBy:    "Name",
		SortOrder: "Ascending",
	}
}

// SystemInfo identifies a remote server.
type SystemInfo struct {
	ServerName      string `json:"serverName"`
	Version         string `json:"version"`
	ID              string `json:"serverId"`
	OperatingSystem string `json:"os"`
}
