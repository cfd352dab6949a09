package reconcile

import "time"

// Config holds the sync settings loaded from the "sync" section.
type Config struct {
	// FuzzyThreshold is the minimum similarity for a fuzzy candidate.
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" default:"0.6"`
	// MaxCandidates caps fuzzy candidates per remote item.
	MaxCandidates int `mapstructure:"max_candidates" default:"5"`
	// ActiveServerTTLSeconds is how long the active server lookup is cached.
	ActiveServerTTLSeconds int `mapstructure:"active_server_ttl_seconds" default:"60"`
}

// Options returns the matcher options, with defaults for unset values.
func (c Config) Options() Options {
	return Options{
		Threshold:     c.FuzzyThreshold,
		MaxCandidates: c.MaxCandidates,
	}.normalized()
}

// ActiveServerTTL returns the cache lifetime of the active server. Negative
// values disable caching.
func (c Config) ActiveServerTTL() time.Duration {
	if c.ActiveServerTTLSeconds < 0 {
		return 0
	}
	return time.Duration(c.ActiveServerTTLSeconds) * time.Second
}
