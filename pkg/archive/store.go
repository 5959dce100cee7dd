package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no record exists for the requested key
	ErrNotFound = errors.New("archive: record not found")
	// ErrAlreadyExists is returned when a create-once record already exists
	ErrAlreadyExists = errors.New("archive: record already exists")
)

// Store is the file-backed summary archive. Daily records may be
// overwritten; weekly and monthly records are create-once. Nothing is
// ever deleted.
type Store struct {
	baseDir string
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewStore creates the archive directory layout under baseDir
func NewStore(baseDir string, logger zerolog.Logger) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("archive directory is required")
	}

	for _, sub := range []string{"daily", "weekly", "monthly"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	return &Store{baseDir: baseDir, logger: logger}, nil
}

func (s *Store) dailyPath(date string) string {
	return filepath.Join(s.baseDir, "daily", date+".json")
}

func (s *Store) weeklyPath(year, week int) string {
	return filepath.Join(s.baseDir, "weekly", WeekKey(year, week)+".json")
}

func (s *Store) monthlyPath(year int, month time.Month) string {
	return filepath.Join(s.baseDir, "monthly", MonthKey(year, month)+".json")
}

// writeRecord persists a record atomically via temp file and rename
func writeRecord(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename record: %w", err)
	}

	return nil
}

// readRecord loads, schema-validates and unmarshals a record
func readRecord(path, schema string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	if err := validateRecord(schema, data); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return json.Unmarshal(data, v)
}

// SaveDaily writes (or overwrites) the daily summary for its date
func (s *Store) SaveDaily(summary *DailySummary) error {
	if _, err := time.Parse(DateFormat, summary.Date); err != nil {
		return fmt.Errorf("invalid daily summary date %q: %w", summary.Date, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeRecord(s.dailyPath(summary.Date), summary); err != nil {
		return err
	}

	s.logger.Debug().Str("date", summary.Date).Msg("Daily summary saved")
	return nil
}

// GetDaily returns the daily summary for a date, or ErrNotFound
func (s *Store) GetDaily(date time.Time) (*DailySummary, error) {
	var summary DailySummary
	if err := readRecord(s.dailyPath(date.Format(DateFormat)), dailySchema, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetDailyRange returns daily summaries within [start, end], ascending by
// date. Missing days are skipped, not errors.
func (s *Store) GetDailyRange(start, end time.Time) ([]*DailySummary, error) {
	var summaries []*DailySummary

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		summary, err := s.GetDaily(d)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// LatestDailyDate returns the most recent date with a daily summary, or
// ErrNotFound for an empty archive.
func (s *Store) LatestDailyDate() (time.Time, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "daily"))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to list daily archive: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		if _, err := time.Parse(DateFormat, name); err == nil {
			dates = append(dates, name)
		}
	}

	if len(dates) == 0 {
		return time.Time{}, ErrNotFound
	}

	sort.Strings(dates)
	return time.Parse(DateFormat, dates[len(dates)-1])
}

// SaveWeekly writes a weekly summary; creating a key twice fails with
// ErrAlreadyExists.
func (s *Store) SaveWeekly(summary *WeeklySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.weeklyPath(summary.Year, summary.Week)
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}

	if err := writeRecord(path, summary); err != nil {
		return err
	}

	s.logger.Debug().Int("year", summary.Year).Int("week", summary.Week).Msg("Weekly summary saved")
	return nil
}

// HasWeekly reports whether a weekly summary exists for the key
func (s *Store) HasWeekly(year, week int) bool {
	_, err := os.Stat(s.weeklyPath(year, week))
	return err == nil
}

// GetWeekly returns the weekly summary for a key, or ErrNotFound
func (s *Store) GetWeekly(year, week int) (*WeeklySummary, error) {
	var summary WeeklySummary
	if err := readRecord(s.weeklyPath(year, week), weeklySchema, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetWeeklyRange returns weekly summaries whose week_start falls within
// [start, end], ascending by week_start.
func (s *Store) GetWeeklyRange(start, end time.Time) ([]*WeeklySummary, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "weekly"))
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly archive: %w", err)
	}

	var summaries []*WeeklySummary
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		var summary WeeklySummary
		if err := readRecord(filepath.Join(s.baseDir, "weekly", e.Name()), weeklySchema, &summary); err != nil {
			s.logger.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable weekly summary")
			continue
		}

		weekStart, err := time.Parse(DateFormat, summary.WeekStart)
		if err != nil {
			continue
		}
		if weekStart.Before(start) || weekStart.After(end) {
			continue
		}
		summaries = append(summaries, &summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].WeekStart < summaries[j].WeekStart
	})
	return summaries, nil
}

// SaveMonthly writes a monthly summary; creating a key twice fails with
// ErrAlreadyExists.
func (s *Store) SaveMonthly(summary *MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := time.Parse(DateFormat, summary.MonthStart)
	if err != nil {
		return fmt.Errorf("invalid month start %q: %w", summary.MonthStart, err)
	}

	path := s.monthlyPath(start.Year(), start.Month())
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}

	if err := writeRecord(path, summary); err != nil {
		return err
	}

	s.logger.Debug().Str("month", summary.Month).Msg("Monthly summary saved")
	return nil
}

// HasMonthly reports whether a monthly summary exists for the key
func (s *Store) HasMonthly(year int, month time.Month) bool {
	_, err := os.Stat(s.monthlyPath(year, month))
	return err == nil
}

// GetMonthly returns the monthly summary for a key, or ErrNotFound
func (s *Store) GetMonthly(year int, month time.Month) (*MonthlySummary, error) {
	var summary MonthlySummary
	if err := readRecord(s.monthlyPath(year, month), monthlySchema, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
