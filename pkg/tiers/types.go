// Package tiers owns the two bounded mutable summaries layered above the
// archive: the Profile and the Rolling Digest.
package tiers

import "time"

// Status is the update state of a tier record
type Status string

const (
	// StatusStale marks a tier with archived days not yet merged in
	StatusStale Status = "stale"
	// StatusCurrent marks a tier whose last update round-trip completed
	StatusCurrent Status = "current"
)

// Profile is the small always-loaded durable-fact summary about the user.
// Single record, replaced wholesale on every update.
type Profile struct {
	Version     int       `json:"version"`
	Status      Status    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	WordCount   int       `json:"word_count"`
	Text        string    `json:"text"`
}

// RollingDigest blends durable facts with events from the trailing
// horizon window. Single record, replaced wholesale on every update.
type RollingDigest struct {
	Version        int       `json:"version"`
	Status         Status    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
	WordCount      int       `json:"word_count"`
	Text           string    `json:"text"`
	LastSourceDate string    `json:"last_source_date,omitempty"` // YYYY-MM-DD
}

// Config bounds the tier update machinery
type Config struct {
	ProfileCeiling   int // max words for the Profile
	DigestCeiling    int // max words for the Rolling Digest
	DigestTargetLow  int // compression target band, lower bound
	DigestTargetHigh int // compression target band, upper bound
	HorizonDays      int // trailing event window for the digest
	MaxOracleCalls   int // per-update cap on compaction calls
}

// DefaultConfig returns the standard tier bounds
func DefaultConfig() Config {
	return Config{
		ProfileCeiling:   500,
		DigestCeiling:    8000,
		DigestTargetLow:  6000,
		DigestTargetHigh: 7000,
		HorizonDays:      14,
		MaxOracleCalls:   2,
	}
}
