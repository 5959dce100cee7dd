package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/rollup"
	"github.com/harun/mnemo/pkg/tiers"
	"github.com/harun/mnemo/pkg/vectorstore"
)

type fakeCompactor struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompactor) Generate(ctx context.Context, prompt string, opts oracle.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// indexEmbedder encodes the numeric suffix of a chunk's first word into
// the returned vector, so ordering can be asserted.
type indexEmbedder struct {
	err error
}

func (f *indexEmbedder) vectorFor(text string) []float32 {
	first := strings.Fields(text)[0]
	n, _ := strconv.Atoi(strings.TrimPrefix(first, "w"))
	return []float32{float32(n), 0, 0, 1}
}

func (f *indexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectorFor(text), nil
}

func (f *indexEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectorFor(text)
	}
	return out, nil
}

func (f *indexEmbedder) Dimension() int { return 4 }

type memStore struct {
	docs    []vectorstore.Document
	vectors [][]float32
}

func (m *memStore) Add(ctx context.Context, texts []string, vectors [][]float32, metadata []vectorstore.Metadata) ([]string, error) {
	ids := make([]string, len(texts))
	for i, text := range texts {
		id := fmt.Sprintf("doc-%03d", len(m.docs))
		m.docs = append(m.docs, vectorstore.Document{ID: id, Text: text, Metadata: metadata[i]})
		m.vectors = append(m.vectors, vectors[i])
		ids[i] = id
	}
	return ids, nil
}

func (m *memStore) Search(ctx context.Context, queryVector []float32, limit int, filter *vectorstore.Filter) ([]vectorstore.SearchHit, error) {
	return nil, nil
}

func (m *memStore) GetAll(ctx context.Context, filter *vectorstore.Filter) ([]vectorstore.Document, error) {
	return m.docs, nil
}

func (m *memStore) Delete(ctx context.Context, ids []string) error { return nil }

func (m *memStore) UpdateMetadata(ctx context.Context, id string, metadata vectorstore.Metadata) error {
	return nil
}

func (m *memStore) Count(ctx context.Context) (int, error) { return len(m.docs), nil }

func (m *memStore) Close() error { return nil }

type testFixture struct {
	pipeline *Pipeline
	archive  *archive.Store
	tiers    *tiers.Store
	store    *memStore
}

func newTestPipeline(t *testing.T, compactor *fakeCompactor, embedder *indexEmbedder) *testFixture {
	t.Helper()

	archiveStore, err := archive.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	tierStore, err := tiers.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { tierStore.Close() })

	store := &memStore{}
	engine := retrieval.NewEngine(store, embedder, zerolog.Nop())
	summarizer := archive.NewSummarizer(compactor, archiveStore, zerolog.Nop())
	tierManager := tiers.NewManager(tierStore, compactor, archiveStore, tiers.DefaultConfig(), zerolog.Nop())
	scheduler := rollup.NewScheduler(archiveStore, compactor, embedder, engine, zerolog.Nop())

	return &testFixture{
		pipeline: NewPipeline(summarizer, embedder, engine, tierManager, scheduler, zerolog.Nop()),
		archive:  archiveStore,
		tiers:    tierStore,
		store:    store,
	}
}

func TestProcessDay(t *testing.T) {
	compactor := &fakeCompactor{response: "You spent the day at the workshop."}
	fx := newTestPipeline(t, compactor, &indexEmbedder{})

	// 2024-01-03 is a Wednesday, no rollup boundary
	date, _ := time.Parse(archive.DateFormat, "2024-01-03")
	report, err := fx.pipeline.ProcessDay(context.Background(), date, numberedWords(1000), "English", "transcripts/2024-01-03.txt")
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "2024-01-03", report.Date)
	assert.Equal(t, 2, report.ChunkCount)
	assert.Len(t, report.DocumentIDs, 2)

	// Daily summary archived
	daily, err := fx.archive.GetDaily(date)
	require.NoError(t, err)
	assert.Equal(t, compactor.response, daily.Summary)

	// Chunks indexed with ordered metadata
	require.Len(t, fx.store.docs, 2)
	for i, doc := range fx.store.docs {
		assert.Equal(t, vectorstore.TypeTranscriptionChunk, doc.Metadata.Type)
		assert.Equal(t, "2024-01-03", doc.Metadata.Date)
		assert.Equal(t, i, doc.Metadata.ChunkIndex)
		assert.Equal(t, 2, doc.Metadata.TotalChunks)
	}

	// Tiers merged and current
	profile, err := fx.tiers.Profile()
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Version)
	assert.Equal(t, tiers.StatusCurrent, profile.Status)

	digest, err := fx.tiers.Digest()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", digest.LastSourceDate)

	// Oracle calls: daily summary, profile merge, digest merge
	assert.Len(t, compactor.prompts, 3)
}

func TestProcessDay_SundayFiresWeeklyRollup(t *testing.T) {
	compactor := &fakeCompactor{response: "A full day of packing and goodbyes."}
	fx := newTestPipeline(t, compactor, &indexEmbedder{})

	for day := 1; day <= 6; day++ {
		require.NoError(t, fx.archive.SaveDaily(&archive.DailySummary{
			Date:      fmt.Sprintf("2024-01-%02d", day),
			Language:  "English",
			Summary:   "Earlier in the week.",
			WordCount: 4,
			CreatedAt: time.Now().UTC(),
		}))
	}

	date, _ := time.Parse(archive.DateFormat, "2024-01-07")
	_, err := fx.pipeline.ProcessDay(context.Background(), date, numberedWords(100), "English", "")
	require.NoError(t, err)

	weekly, err := fx.archive.GetWeekly(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, weekly.DailyCount)

	// Weekly summary embedded alongside the day's single chunk
	require.Len(t, fx.store.docs, 2)
	assert.Equal(t, vectorstore.TypeWeeklySummary, fx.store.docs[1].Metadata.Type)
}

func TestProcessDay_EmbeddingFailureAbortsBeforeTiers(t *testing.T) {
	compactor := &fakeCompactor{response: "Summary text."}
	fx := newTestPipeline(t, compactor, &indexEmbedder{err: errors.New("embedding down")})

	date, _ := time.Parse(archive.DateFormat, "2024-01-03")
	_, err := fx.pipeline.ProcessDay(context.Background(), date, numberedWords(100), "English", "")
	require.Error(t, err)

	profile, err := fx.tiers.Profile()
	require.NoError(t, err)
	assert.Equal(t, 0, profile.Version)
	assert.Empty(t, fx.store.docs)
}

func TestProcessDay_SummaryFailureAbortsEverything(t *testing.T) {
	compactor := &fakeCompactor{err: errors.New("oracle down")}
	fx := newTestPipeline(t, compactor, &indexEmbedder{})

	date, _ := time.Parse(archive.DateFormat, "2024-01-03")
	_, err := fx.pipeline.ProcessDay(context.Background(), date, numberedWords(100), "English", "")
	require.Error(t, err)
	assert.Empty(t, fx.store.docs)
}

func TestEmbedChunks_OrderPreservedAcrossBatches(t *testing.T) {
	fx := newTestPipeline(t, &fakeCompactor{response: "x"}, &indexEmbedder{})

	// 84 chunks, two concurrent embedding batches
	chunks := ChunkWords(numberedWords(60000), DefaultChunkSize, DefaultChunkOverlap)
	require.Greater(t, len(chunks), embedBatchSize)

	vectors, err := fx.pipeline.embedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, vectors, len(chunks))

	for i, chunk := range chunks {
		first := strings.Fields(chunk)[0]
		want, _ := strconv.Atoi(strings.TrimPrefix(first, "w"))
		assert.Equal(t, float32(want), vectors[i][0], "chunk %d", i)
	}
}
