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

// UpdateProfile merges a new daily summary into the profile. The merge
// takes one oracle call; if the merged text lands past twice the ceiling
// a single compression call follows. The result is persisted regardless,
// with its true word count. Only a successful round-trip transitions the
// profile to current.
func (m *Manager) UpdateProfile(ctx context.Context, dailySummary string) (*Profile, error) {
	if strings.TrimSpace(dailySummary) == "" {
		return nil, errors.New("daily summary is empty")
	}

	m.profileMu.Lock()
	defer m.profileMu.Unlock()

	current, err := m.store.Profile()
	if err != nil {
		return nil, err
	}

	currentText := current.Text
	if strings.TrimSpace(currentText) == "" {
		currentText = emptyTierMarker
	}

	prompt := fmt.Sprintf(profileMergePrompt,
		m.cfg.ProfileCeiling, current.WordCount, currentText,
		time.Now().Format(archive.DateFormat), dailySummary,
		m.cfg.ProfileCeiling)
	merged, err := m.compactor.Generate(ctx, prompt, oracle.GenerateOptions{Temperature: mergeTemperature})
	if err != nil {
		return nil, fmt.Errorf("profile merge failed: %w", err)
	}
	merged = strings.TrimSpace(merged)
	if merged == "" {
		return nil, errors.New("profile merge returned empty text")
	}

	words := archive.CountWords(merged)
	calls := 1

	if words > 2*m.cfg.ProfileCeiling && calls < m.cfg.MaxOracleCalls {
		compressed, err := m.compactor.Generate(ctx,
			fmt.Sprintf(profileCompressPrompt, m.cfg.ProfileCeiling, merged, m.cfg.ProfileCeiling),
			oracle.GenerateOptions{Temperature: compressTemperature})
		calls++
		if err != nil {
			m.logger.Warn().Err(err).Msg("Profile compression failed, keeping merged text")
		} else if compressed = strings.TrimSpace(compressed); compressed != "" {
			merged = compressed
			words = archive.CountWords(merged)
		}
	}

	if words > m.cfg.ProfileCeiling {
		m.logger.Warn().
			Int("words", words).
			Int("ceiling", m.cfg.ProfileCeiling).
			Int("oracle_calls", calls).
			Msg("Profile over ceiling after compaction, persisting anyway")
	}

	updated := &Profile{
		Version:     current.Version + 1,
		Status:      StatusCurrent,
		LastUpdated: time.Now().UTC(),
		WordCount:   words,
		Text:        merged,
	}
	if err := m.store.SaveProfile(updated); err != nil {
		return nil, err
	}

	m.logger.Info().
		Int("version", updated.Version).
		Int("words", words).
		Int("oracle_calls", calls).
		Msg("Profile updated")

	return updated, nil
}
