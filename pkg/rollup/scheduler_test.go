package rollup

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/mnemo/pkg/archive"
	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/retrieval"
	"github.com/harun/mnemo/pkg/vectorstore"
)

type fakeCompactor struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompactor) Generate(ctx context.Context, prompt string, opts oracle.GenerateOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeEmbedder struct {
	dim   int
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return make([]float32, f.dim), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	f.calls += len(texts)
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// memStore is a minimal in-memory embedding index for rollup tests
type memStore struct {
	docs []vectorstore.Document
}

func (m *memStore) Add(ctx context.Context, texts []string, vectors [][]float32, metadata []vectorstore.Metadata) ([]string, error) {
	ids := make([]string, len(texts))
	for i, text := range texts {
		id := fmt.Sprintf("doc-%03d", len(m.docs))
		m.docs = append(m.docs, vectorstore.Document{ID: id, Text: text, Metadata: metadata[i]})
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

func newTestScheduler(t *testing.T, compactor *fakeCompactor) (*Scheduler, *archive.Store, *memStore) {
	t.Helper()

	archiveStore, err := archive.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	store := &memStore{}
	embedder := &fakeEmbedder{dim: 4}
	engine := retrieval.NewEngine(store, embedder, zerolog.Nop())

	return NewScheduler(archiveStore, compactor, embedder, engine, zerolog.Nop()), archiveStore, store
}

func seedWeek(t *testing.T, store *archive.Store, start string, days int) {
	t.Helper()
	first, err := time.Parse(archive.DateFormat, start)
	require.NoError(t, err)
	for i := 0; i < days; i++ {
		d := first.AddDate(0, 0, i)
		require.NoError(t, store.SaveDaily(&archive.DailySummary{
			Date:      d.Format(archive.DateFormat),
			Language:  "English",
			Summary:   fmt.Sprintf("Events of %s.", d.Format(archive.DateFormat)),
			WordCount: 4,
			CreatedAt: time.Now().UTC(),
		}))
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(archive.DateFormat, s)
	require.NoError(t, err)
	return d
}

func TestMaybeCreateWeekly_CompleteWeek(t *testing.T) {
	compactor := &fakeCompactor{response: "The week revolved around the apartment move."}
	scheduler, archiveStore, store := newTestScheduler(t, compactor)

	// 2024-01-01 is a Monday, 2024-01-07 the following Sunday
	seedWeek(t, archiveStore, "2024-01-01", 7)

	summary, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "2024-01-01", summary.WeekStart)
	assert.Equal(t, "2024-01-07", summary.WeekEnd)
	assert.Equal(t, 7, summary.DailyCount)
	assert.Equal(t, 2024, summary.Year)
	assert.Equal(t, 1, summary.Week)
	assert.Equal(t, 1, compactor.calls)

	// Persisted and embedded
	assert.True(t, archiveStore.HasWeekly(2024, 1))
	require.Len(t, store.docs, 1)
	assert.Equal(t, vectorstore.TypeWeeklySummary, store.docs[0].Metadata.Type)
	assert.Equal(t, "2024-01-01", store.docs[0].Metadata.Date)
}

func TestMaybeCreateWeekly_SecondCallIsNoOp(t *testing.T) {
	compactor := &fakeCompactor{response: "Weekly recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-01", 7)

	first, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, compactor.calls)
}

func TestMaybeCreateWeekly_NotSundayDoesNotFire(t *testing.T) {
	compactor := &fakeCompactor{response: "Weekly recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-01", 6)

	// 2024-01-06 is a Saturday
	summary, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-06"))
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, compactor.calls)
}

func TestMaybeCreateWeekly_PartialWeekCounted(t *testing.T) {
	compactor := &fakeCompactor{response: "A short week on record."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	// Only 3 of the 7 days archived
	seedWeek(t, archiveStore, "2024-01-03", 3)

	summary, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.DailyCount)
}

func TestMaybeCreateWeekly_NoDailiesIsNotFound(t *testing.T) {
	compactor := &fakeCompactor{response: "Weekly recap."}
	scheduler, _, _ := newTestScheduler(t, compactor)

	_, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrNotFound)
	assert.Equal(t, 0, compactor.calls)
}

func TestMaybeCreateWeekly_OracleFailureCreatesNothing(t *testing.T) {
	compactor := &fakeCompactor{err: errors.New("oracle down")}
	scheduler, archiveStore, store := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-01", 7)

	_, err := scheduler.MaybeCreateWeekly(context.Background(), mustDate(t, "2024-01-07"))
	require.Error(t, err)
	assert.False(t, archiveStore.HasWeekly(2024, 1))
	assert.Empty(t, store.docs)
}

func TestMaybeCreateMonthly_MonthEnd(t *testing.T) {
	compactor := &fakeCompactor{response: "January centered on the move."}
	scheduler, archiveStore, store := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-25", 7) // through 2024-01-31

	summary, err := scheduler.MaybeCreateMonthly(context.Background(), mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, "2024-01", summary.Month)
	assert.Equal(t, "2024-01-01", summary.MonthStart)
	assert.Equal(t, "2024-01-31", summary.MonthEnd)
	assert.Equal(t, 7, summary.DailyCount)

	assert.True(t, archiveStore.HasMonthly(2024, time.January))
	require.Len(t, store.docs, 1)
	assert.Equal(t, vectorstore.TypeMonthlySummary, store.docs[0].Metadata.Type)
}

func TestMaybeCreateMonthly_NotMonthEndDoesNotFire(t *testing.T) {
	compactor := &fakeCompactor{response: "Monthly recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-25", 6)

	summary, err := scheduler.MaybeCreateMonthly(context.Background(), mustDate(t, "2024-01-30"))
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, compactor.calls)
}

func TestMaybeCreateMonthly_LeapFebruary(t *testing.T) {
	compactor := &fakeCompactor{response: "February recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-02-26", 4) // through 2024-02-29

	summary, err := scheduler.MaybeCreateMonthly(context.Background(), mustDate(t, "2024-02-29"))
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "2024-02-29", summary.MonthEnd)

	// 2024-02-28 is not month end in a leap year
	assert.True(t, archiveStore.HasMonthly(2024, time.February))
}

func TestMaybeCreateMonthly_SecondCallIsNoOp(t *testing.T) {
	compactor := &fakeCompactor{response: "Monthly recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-29", 3)

	first, err := scheduler.MaybeCreateMonthly(context.Background(), mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := scheduler.MaybeCreateMonthly(context.Background(), mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, compactor.calls)
}

func TestRunForDate_AdvisoryOnFailure(t *testing.T) {
	compactor := &fakeCompactor{err: errors.New("oracle down")}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	seedWeek(t, archiveStore, "2024-01-01", 7)

	// Both rollup failures are swallowed
	scheduler.RunForDate(context.Background(), mustDate(t, "2024-01-07"))
	assert.False(t, archiveStore.HasWeekly(2024, 1))
}

func TestRunForDate_BothPeriodsOnSharedBoundary(t *testing.T) {
	compactor := &fakeCompactor{response: "Recap."}
	scheduler, archiveStore, _ := newTestScheduler(t, compactor)

	// 2024-03-31 is both a Sunday and a month end
	seedWeek(t, archiveStore, "2024-03-25", 7)

	scheduler.RunForDate(context.Background(), mustDate(t, "2024-03-31"))

	year, week := mustDate(t, "2024-03-25").ISOWeek()
	assert.True(t, archiveStore.HasWeekly(year, week))
	assert.True(t, archiveStore.HasMonthly(2024, time.March))
	assert.Equal(t, 2, compactor.calls)
}
