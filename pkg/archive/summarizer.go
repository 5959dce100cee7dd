package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/oracle"
)

const summaryTemperature = 0.5

// Summarizer condenses raw day transcripts into archived daily summaries
type Summarizer struct {
	compactor oracle.CompactionOracle
	store     *Store
	logger    zerolog.Logger
}

// NewSummarizer creates a daily summarizer backed by the given store
func NewSummarizer(compactor oracle.CompactionOracle, store *Store, logger zerolog.Logger) *Summarizer {
	return &Summarizer{
		compactor: compactor,
		store:     store,
		logger:    logger.With().Str("component", "summarizer").Logger(),
	}
}

// CreateDaily summarizes a day's transcript and archives the result.
// Re-running for the same date overwrites the previous record.
func (s *Summarizer) CreateDaily(ctx context.Context, date time.Time, transcript, language, sourceRef string) (*DailySummary, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("transcript is empty")
	}
	if language == "" {
		language = "English"
	}

	dateStr := date.Format(DateFormat)
	prompt := fmt.Sprintf(dailySummaryPrompt, language, dateStr, transcript)

	text, err := s.compactor.Generate(ctx, prompt, oracle.GenerateOptions{Temperature: summaryTemperature})
	if err != nil {
		return nil, fmt.Errorf("daily summary generation failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("daily summary generation returned empty text")
	}

	summary := &DailySummary{
		Date:      dateStr,
		Language:  language,
		Summary:   text,
		SourceRef: sourceRef,
		WordCount: CountWords(text),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveDaily(summary); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("date", dateStr).
		Int("words", summary.WordCount).
		Msg("Daily summary archived")

	return summary, nil
}

// CountWords counts whitespace-separated words. Every word-ceiling check
// in the system uses this definition.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
