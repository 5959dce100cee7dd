// Package rollup detects completed calendar periods and consolidates
// their daily summaries into weekly and monthly archive records.
package rollup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/vectorstore"
)

// Weeks run Monday through Sunday; a week is complete on its Sunday.
const weekEndDay = time.Sunday

const rollupTemperature = 0.5

// Scheduler decides from calendar arithmetic and existence checks
// whether a period rollup is due. It never creates the same period twice.
type Scheduler struct {
	archive   *archive.Store
	compactor oracle.CompactionOracle
	embedder  oracle.EmbeddingOracle
	engine    *retrieval.Engine
	logger    zerolog.Logger
}

// NewScheduler wires the rollup scheduler to the archive, oracles and
// retrieval engine.
func NewScheduler(archiveStore *archive.Store, compactor oracle.CompactionOracle, embedder oracle.EmbeddingOracle, engine *retrieval.Engine, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		archive:   archiveStore,
		compactor: compactor,
		embedder:  embedder,
		engine:    engine,
		logger:    logger.With().Str("component", "rollup").Logger(),
	}
}

// MaybeCreateWeekly creates the weekly summary for the week ending at
// date. It fires only when date is a Sunday and the week's record does
// not exist yet; otherwise it returns (nil, nil). A complete trigger
// with no archived dailies fails with archive.ErrNotFound.
func (s *Scheduler) MaybeCreateWeekly(ctx context.Context, date time.Time) (*archive.WeeklySummary, error) {
	if date.Weekday() != weekEndDay {
		return nil, nil
	}

	weekStart := date.AddDate(0, 0, -6)
	year, week := weekStart.ISOWeek()

	if s.archive.HasWeekly(year, week) {
		s.logger.Debug().Str("week", archive.WeekKey(year, week)).Msg("Weekly summary already exists")
		return nil, nil
	}

	dailies, err := s.archive.GetDailyRange(weekStart, date)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, fmt.Errorf("no daily summaries in week %s: %w", archive.WeekKey(year, week), archive.ErrNotFound)
	}

	startStr := weekStart.Format(archive.DateFormat)
	endStr := date.Format(archive.DateFormat)

	prompt := fmt.Sprintf(weeklyPrompt, startStr, endStr, concatDailies(dailies))
	text, err := s.compactor.Generate(ctx, prompt, oracle.GenerateOptions{Temperature: rollupTemperature})
	if err != nil {
		return nil, fmt.Errorf("weekly summary generation failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("weekly summary generation returned empty text")
	}

	summary := &archive.WeeklySummary{
		WeekStart:  startStr,
		WeekEnd:    endStr,
		Year:       year,
		Week:       week,
		Summary:    text,
		DailyCount: len(dailies),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.archive.SaveWeekly(summary); err != nil {
		return nil, err
	}

	s.embed(ctx, text, vectorstore.Metadata{
		Date: startStr,
		Type: vectorstore.TypeWeeklySummary,
	})

	s.logger.Info().
		Str("week", archive.WeekKey(year, week)).
		Int("daily_count", len(dailies)).
		Msg("Weekly summary created")

	return summary, nil
}

// MaybeCreateMonthly creates the monthly summary for the month ending at
// date. It fires only when date is the last day of its month and the
// month's record does not exist yet; otherwise it returns (nil, nil).
func (s *Scheduler) MaybeCreateMonthly(ctx context.Context, date time.Time) (*archive.MonthlySummary, error) {
	if date.AddDate(0, 0, 1).Day() != 1 {
		return nil, nil
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	key := archive.MonthKey(date.Year(), date.Month())

	if s.archive.HasMonthly(date.Year(), date.Month()) {
		s.logger.Debug().Str("month", key).Msg("Monthly summary already exists")
		return nil, nil
	}

	dailies, err := s.archive.GetDailyRange(monthStart, date)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, fmt.Errorf("no daily summaries in month %s: %w", key, archive.ErrNotFound)
	}

	startStr := monthStart.Format(archive.DateFormat)
	endStr := date.Format(archive.DateFormat)

	combined := concatDailies(dailies)
	if len(combined) > monthlyInputLimit {
		combined = combined[:monthlyInputLimit] + "...[truncated]"
	}

	prompt := fmt.Sprintf(monthlyPrompt, key, startStr, endStr, combined)
	text, err := s.compactor.Generate(ctx, prompt, oracle.GenerateOptions{Temperature: rollupTemperature})
	if err != nil {
		return nil, fmt.Errorf("monthly summary generation failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("monthly summary generation returned empty text")
	}

	summary := &archive.MonthlySummary{
		Month:      key,
		MonthStart: startStr,
		MonthEnd:   endStr,
		Summary:    text,
		DailyCount: len(dailies),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.archive.SaveMonthly(summary); err != nil {
		return nil, err
	}

	s.embed(ctx, text, vectorstore.Metadata{
		Date: startStr,
		Type: vectorstore.TypeMonthlySummary,
	})

	s.logger.Info().
		Str("month", key).
		Int("daily_count", len(dailies)).
		Msg("Monthly summary created")

	return summary, nil
}

// RunForDate fires both rollup checks for a date. Rollups are advisory:
// failures are logged and reported back, never escalated by this method.
func (s *Scheduler) RunForDate(ctx context.Context, date time.Time) {
	if _, err := s.MaybeCreateWeekly(ctx, date); err != nil {
		s.logger.Warn().Err(err).Str("date", date.Format(archive.DateFormat)).Msg("Weekly rollup failed")
	}
	if _, err := s.MaybeCreateMonthly(ctx, date); err != nil {
		s.logger.Warn().Err(err).Str("date", date.Format(archive.DateFormat)).Msg("Monthly rollup failed")
	}
}

// embed pushes a rollup into the retrieval engine. The rollup record is
// already persisted at this point, so an embedding failure only costs
// searchability and is logged, not returned.
func (s *Scheduler) embed(ctx context.Context, text string, meta vectorstore.Metadata) {
	if s.embedder == nil || s.engine == nil {
		return
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Str("type", meta.Type).Msg("Rollup embedding failed")
		return
	}

	if _, err := s.engine.AddDocuments(ctx, []string{text}, [][]float32{vector}, []vectorstore.Metadata{meta}); err != nil {
		s.logger.Warn().Err(err).Str("type", meta.Type).Msg("Rollup indexing failed")
	}
}

func concatDailies(dailies []*archive.DailySummary) string {
	parts := make([]string, 0, len(dailies))
	for _, d := range dailies {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", d.Date, d.Summary))
	}
	return strings.Join(parts, "\n\n")
}
