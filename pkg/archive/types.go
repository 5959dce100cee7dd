// Package archive persists the append-only collection of daily, weekly and
// monthly summaries.
package archive

import (
	"fmt"
	"time"
)

// DateFormat is the calendar key format used across the archive
const DateFormat = "2006-01-02"

// DailySummary is one day's compressed narrative, keyed by calendar date.
// Re-creation for the same date overwrites.
type DailySummary struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Language  string    `json:"language"`
	Summary   string    `json:"summary"`
	SourceRef string    `json:"source_ref,omitempty"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// WeeklySummary covers a complete Monday-to-Sunday week. Created exactly
// once per (year, week) key.
type WeeklySummary struct {
	WeekStart  string    `json:"week_start"` // Monday, YYYY-MM-DD
	WeekEnd    string    `json:"week_end"`   // Sunday, YYYY-MM-DD
	Year       int       `json:"year"`
	Week       int       `json:"week"` // ISO week number
	Summary    string    `json:"summary"`
	DailyCount int       `json:"daily_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// MonthlySummary covers a complete calendar month. Created exactly once
// per (year, month) key.
type MonthlySummary struct {
	Month      string    `json:"month"`       // YYYY-MM
	MonthStart string    `json:"month_start"` // YYYY-MM-DD
	MonthEnd   string    `json:"month_end"`   // YYYY-MM-DD
	Summary    string    `json:"summary"`
	DailyCount int       `json:"daily_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// WeekKey returns the archive key for a (year, ISO week) pair
func WeekKey(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKey returns the archive key for a (year, month) pair
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
