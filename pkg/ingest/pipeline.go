package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/rollup"
	"github.com/harun/mnemo/pkg/tiers"
	"github.com/harun/mnemo/pkg/vectorstore"
)

// embedBatchSize is the number of chunks sent per embedding request
const embedBatchSize = 64

// Pipeline processes one day's transcript end to end: archive a daily
// summary, chunk and embed the transcript, merge the tiers, then fire
// the advisory rollup checks.
type Pipeline struct {
	summarizer *archive.Summarizer
	embedder   oracle.EmbeddingOracle
	engine     *retrieval.Engine
	tiers      *tiers.Manager
	rollups    *rollup.Scheduler
	logger     zerolog.Logger

	chunkSize    int
	chunkOverlap int
}

// Report describes one completed ingestion run
type Report struct {
	RunID        string
	Date         string
	SummaryWords int
	ChunkCount   int
	DocumentIDs  []string
}

// NewPipeline assembles the ingestion pipeline
func NewPipeline(summarizer *archive.Summarizer, embedder oracle.EmbeddingOracle, engine *retrieval.Engine, tierManager *tiers.Manager, rollups *rollup.Scheduler, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		summarizer:   summarizer,
		embedder:     embedder,
		engine:       engine,
		tiers:        tierManager,
		rollups:      rollups,
		logger:       logger.With().Str("component", "ingest").Logger(),
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
}

// ProcessDay runs the full per-day pipeline. Summary, embedding and tier
// updates are mandatory and abort the run on failure; rollups are
// advisory and only logged.
func (p *Pipeline) ProcessDay(ctx context.Context, date time.Time, transcript, language, sourceRef string) (*Report, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	dateStr := date.Format(archive.DateFormat)
	log := p.logger.With().Str("run_id", runID).Str("date", dateStr).Logger()
	log.Info().Msg("Processing day")

	daily, err := p.summarizer.CreateDaily(ctx, date, transcript, language, sourceRef)
	if err != nil {
		return nil, err
	}

	chunks := ChunkWords(transcript, p.chunkSize, p.chunkOverlap)
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	metadata := make([]vectorstore.Metadata, len(chunks))
	for i := range chunks {
		metadata[i] = vectorstore.Metadata{
			Date:        dateStr,
			Type:        vectorstore.TypeTranscriptionChunk,
			Language:    language,
			ChunkIndex:  i,
			TotalChunks: len(chunks),
		}
	}

	ids, err := p.engine.AddDocuments(ctx, chunks, vectors, metadata)
	if err != nil {
		return nil, err
	}

	if err := p.tiers.MarkStale(); err != nil {
		return nil, err
	}
	if _, err := p.tiers.UpdateProfile(ctx, daily.Summary); err != nil {
		return nil, err
	}
	if _, err := p.tiers.UpdateRollingDigest(ctx, date); err != nil {
		return nil, err
	}

	if p.rollups != nil {
		p.rollups.RunForDate(ctx, date)
	}

	log.Info().
		Int("chunks", len(chunks)).
		Int("summary_words", daily.WordCount).
		Msg("Day processed")

	return &Report{
		RunID:        runID,
		Date:         dateStr,
		SummaryWords: daily.WordCount,
		ChunkCount:   len(chunks),
		DocumentIDs:  ids,
	}, nil
}

// embedChunks embeds chunk batches concurrently while keeping results in
// chunk order.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(chunks))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			batch, err := p.embedder.EmbedBatch(ctx, chunks[start:end])
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			copy(vectors[start:end], batch)
		}(start, end)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("chunk embedding failed: %w", firstErr)
	}
	return vectors, nil
}
