package reconcile

import "fmt"

// Entry is the view of a catalog record that the matcher compares.
// Both local and remote records implement it.
type Entry interface {
	// MatchID returns the numeric identifier of the record.
	MatchID() uint

	// MatchType returns the media type (e.g. "Movie", "Series").
	MatchType() string

	// MatchTitle returns the display title.
	MatchTitle() string

	// MatchOriginalTitle returns the original title, or "" if unknown.
	MatchOriginalTitle() string

	// MatchExternalIDs returns provider key -> ID (e.g. "imdb" -> "tt0111161").
	MatchExternalIDs() map[string]string
}

// MatchStatus is the derived state of one remote item after a matching run.
type MatchStatus string

const (
	// StatusMatched means the remote item already carries a local mapping.
	StatusMatched MatchStatus = "matched"
	// StatusExact means exactly one local item matched by title or external id.
	StatusExact MatchStatus = "exact"
	// StatusMultiple means one or more fuzzy candidates cleared the threshold.
	StatusMultiple MatchStatus = "multiple"
	// StatusNone means no local item cleared the threshold.
	StatusNone MatchStatus = "none"
)

// Candidate is a local record proposed for a remote record with its similarity score.
type Candidate[L Entry] struct {
	// Item is the proposed local record.
	Item L `json:"item"`

	// Score is the similarity in [0,1]. Exact matches score 1.
	Score float64 `json:"score"`
}

// Result pairs one remote record with its candidates and status.
type Result[R Entry, L Entry] struct {
	// Item is the remote record.
	Item R `json:"item"`

	// Matches holds the candidates, best first.
	Matches []Candidate[L] `json:"matches"`

	// Status is the derived match state.
	Status MatchStatus `json:"status"`
}

// Options controls the fuzzy pass of the matcher.
type Options struct {
	// Threshold is the minimum similarity a fuzzy candidate needs.
	Threshold float64

	// MaxCandidates caps the number of fuzzy candidates per remote record.
	MaxCandidates int
}

const (
	// DefaultThreshold is the fuzzy score cut-off used when none is configured.
	DefaultThreshold = 0.6
	// DefaultMaxCandidates is the fuzzy candidate cap used when none is configured.
	DefaultMaxCandidates = 5
)

// DefaultOptions returns the matcher options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		MaxCandidates: DefaultMaxCandidates,
	}
}

// normalized fills zero values with defaults.
func (o Options) normalized() Options {
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	return o
}

// OperationType represents the kind of mapping mutation.
type OperationType string

const (
	// OpMap links a remote item to an existing local item.
	OpMap OperationType = "map"
	// OpUnmap removes the link from a remote item.
	OpUnmap OperationType = "unmap"
	// OpCreate creates a local item from remote data and links it.
	OpCreate OperationType = "create"
	// OpRefresh overwrites the linked local item with remote data.
	OpRefresh OperationType = "refresh"
)

// Operation is one user-confirmed mapping mutation.
type Operation struct {
	// Type specifies the mutation to perform.
	Type OperationType `json:"type" validate:"required,oneof=map unmap create refresh"`

	// RemoteItemID is the mirror row the operation targets.
	RemoteItemID uint `json:"remoteItemId" validate:"required"`

	// LocalItemID is the local item to link. Only used by OpMap.
	LocalItemID uint `json:"localItemId,omitempty"`
}

// String returns a short description used in logs.
func (o Operation) String() string {
	if o.Type == OpMap {
		return fmt.Sprintf("%s(%d->%d)", o.Type, o.RemoteItemID, o.LocalItemID)
	}
	return fmt.Sprintf("%s(%d)", o.Type, o.RemoteItemID)
}

// Failure records why one operation of a batch failed.
type Failure struct {
	// ID is the remote item id of the failed operation.
	ID uint `json:"id"`

	// Error is a human-readable message.
	Error string `json:"error"`
}

// BatchResult collects the per-operation outcomes of a batch.
type BatchResult struct {
	// Success holds the remote item ids of operations that completed.
	Success []uint `json:"success"`

	// Failed holds the operations that did not complete.
	Failed []Failure `json:"failed"`
}
