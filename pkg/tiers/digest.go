package tiers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
)

// UpdateRollingDigest merges the daily summary for referenceDate into
// the rolling digest, keeping events to the trailing horizon window. A
// zero referenceDate resumes from the most recent archived daily. A date
// with no archived daily is a logged gap, and the previous digest comes
// back unchanged.
func (m *Manager) UpdateRollingDigest(ctx context.Context, referenceDate time.Time) (*RollingDigest, error) {
	m.digestMu.Lock()
	defer m.digestMu.Unlock()

	current, err := m.store.Digest()
	if err != nil {
		return nil, err
	}

	if referenceDate.IsZero() {
		latest, err := m.archive.LatestDailyDate()
		if errors.Is(err, archive.ErrNotFound) {
			m.logger.Info().Msg("No archived daily summaries, digest unchanged")
			return current, nil
		}
		if err != nil {
			return nil, err
		}
		referenceDate = latest
	}

	dateStr := referenceDate.Format(archive.DateFormat)

	daily, err := m.archive.GetDaily(referenceDate)
	if errors.Is(err, archive.ErrNotFound) {
		m.logger.Info().Str("date", dateStr).Msg("No daily summary for date, digest unchanged")
		return current, nil
	}
	if err != nil {
		return nil, err
	}

	cutoff := referenceDate.AddDate(0, 0, -(m.cfg.HorizonDays - 1))
	cutoffStr := cutoff.Format(archive.DateFormat)

	currentText := current.Text
	if strings.TrimSpace(currentText) == "" {
		currentText = emptyTierMarker
	}

	weeklyContext := noWeeklyMarker
	if weeklies, err := m.archive.GetWeeklyRange(cutoff, referenceDate); err == nil && len(weeklies) > 0 {
		weeklyContext = weeklies[len(weeklies)-1].Summary
	}

	prompt := fmt.Sprintf(digestMergePrompt,
		m.cfg.HorizonDays, m.cfg.DigestCeiling, m.cfg.DigestTargetLow, m.cfg.DigestTargetHigh,
		current.WordCount, currentText,
		dateStr, daily.Summary, weeklyContext,
		cutoffStr,
		m.cfg.DigestTargetLow, m.cfg.DigestTargetHigh, m.cfg.DigestCeiling)

	merged, err := m.compactor.Generate(ctx, prompt, oracle.GenerateOptions{
		Temperature: compressTemperature,
		MaxTokens:   digestMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("digest merge failed: %w", err)
	}
	merged = strings.TrimSpace(merged)
	if merged == "" {
		return nil, errors.New("digest merge returned empty text")
	}

	words := archive.CountWords(merged)
	calls := 1

	if words > m.cfg.DigestCeiling && calls < m.cfg.MaxOracleCalls {
		compressed, err := m.compactor.Generate(ctx,
			fmt.Sprintf(digestCompressPrompt, words, m.cfg.DigestCeiling, merged, m.cfg.DigestCeiling),
			oracle.GenerateOptions{
				Temperature: compressTemperature,
				MaxTokens:   digestMaxTokens,
			})
		calls++
		if err != nil {
			m.logger.Warn().Err(err).Msg("Digest compression failed, keeping merged text")
		} else if compressed = strings.TrimSpace(compressed); compressed != "" {
			merged = compressed
			words = archive.CountWords(merged)
		}
	}

	if words > m.cfg.DigestCeiling {
		m.logger.Warn().
			Int("words", words).
			Int("ceiling", m.cfg.DigestCeiling).
			Int("oracle_calls", calls).
			Msg("Digest over ceiling after compaction, persisting anyway")
	}

	updated := &RollingDigest{
		Version:        current.Version + 1,
		Status:         StatusCurrent,
		LastUpdated:    time.Now().UTC(),
		WordCount:      words,
		Text:           merged,
		LastSourceDate: dateStr,
	}
	if err := m.store.SaveDigest(updated); err != nil {
		return nil, err
	}

	m.logger.Info().
		Int("version", updated.Version).
		Int("words", words).
		Str("source_date", dateStr).
		Int("oracle_calls", calls).
		Msg("Rolling digest updated")

	return updated, nil
}
