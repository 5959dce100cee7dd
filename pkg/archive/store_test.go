package archive

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func testDaily(date string) *DailySummary {
	return &DailySummary{
		Date:      date,
		Language:  "English",
		Summary:   "A quiet day spent reading and catching up with friends.",
		WordCount: 10,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStore_DailyRoundTrip(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.SaveDaily(testDaily("2024-01-03")))

	date, _ := time.Parse(DateFormat, "2024-01-03")
	got, err := store.GetDaily(date)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", got.Date)
	assert.Equal(t, "English", got.Language)
}

func TestStore_DailyOverwriteAllowed(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.SaveDaily(testDaily("2024-01-03")))

	updated := testDaily("2024-01-03")
	updated.Summary = "Revised summary after reprocessing the transcript."
	require.NoError(t, store.SaveDaily(updated))

	date, _ := time.Parse(DateFormat, "2024-01-03")
	got, err := store.GetDaily(date)
	require.NoError(t, err)
	assert.Equal(t, updated.Summary, got.Summary)
}

func TestStore_DailyNotFound(t *testing.T) {
	store := createTestStore(t)

	date, _ := time.Parse(DateFormat, "2024-01-03")
	_, err := store.GetDaily(date)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DailyInvalidDateRejected(t *testing.T) {
	store := createTestStore(t)
	assert.Error(t, store.SaveDaily(testDaily("03/01/2024")))
}

func TestStore_DailyRangeSkipsMissingDays(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.SaveDaily(testDaily("2024-01-01")))
	require.NoError(t, store.SaveDaily(testDaily("2024-01-03")))
	require.NoError(t, store.SaveDaily(testDaily("2024-01-05")))

	start, _ := time.Parse(DateFormat, "2024-01-01")
	end, _ := time.Parse(DateFormat, "2024-01-04")

	got, err := store.GetDailyRange(start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
}

func TestStore_LatestDailyDate(t *testing.T) {
	store := createTestStore(t)

	_, err := store.LatestDailyDate()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveDaily(testDaily("2024-01-03")))
	require.NoError(t, store.SaveDaily(testDaily("2024-02-10")))
	require.NoError(t, store.SaveDaily(testDaily("2024-01-20")))

	latest, err := store.LatestDailyDate()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10", latest.Format(DateFormat))
}

func TestStore_WeeklyCreateOnce(t *testing.T) {
	store := createTestStore(t)

	weekly := &WeeklySummary{
		WeekStart:  "2024-01-01",
		WeekEnd:    "2024-01-07",
		Year:       2024,
		Week:       1,
		Summary:    "The week revolved around the apartment move.",
		DailyCount: 7,
		CreatedAt:  time.Now().UTC(),
	}

	require.NoError(t, store.SaveWeekly(weekly))
	assert.True(t, store.HasWeekly(2024, 1))
	assert.False(t, store.HasWeekly(2024, 2))

	err := store.SaveWeekly(weekly)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := store.GetWeekly(2024, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, got.DailyCount)
	assert.Equal(t, "2024-01-01", got.WeekStart)
}

func TestStore_WeeklyRange(t *testing.T) {
	store := createTestStore(t)

	for i, weekStart := range []string{"2024-01-01", "2024-01-08", "2024-02-05"} {
		start, _ := time.Parse(DateFormat, weekStart)
		end := start.AddDate(0, 0, 6)
		year, week := end.ISOWeek()
		require.NoError(t, store.SaveWeekly(&WeeklySummary{
			WeekStart:  weekStart,
			WeekEnd:    end.Format(DateFormat),
			Year:       year,
			Week:       week,
			Summary:    "Weekly recap.",
			DailyCount: i + 1,
			CreatedAt:  time.Now().UTC(),
		}))
	}

	start, _ := time.Parse(DateFormat, "2024-01-01")
	end, _ := time.Parse(DateFormat, "2024-01-31")

	got, err := store.GetWeeklyRange(start, end)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-01", got[0].WeekStart)
	assert.Equal(t, "2024-01-08", got[1].WeekStart)
}

func TestStore_MonthlyCreateOnce(t *testing.T) {
	store := createTestStore(t)

	monthly := &MonthlySummary{
		Month:      "2024-01",
		MonthStart: "2024-01-01",
		MonthEnd:   "2024-01-31",
		Summary:    "January centered on settling into the new apartment.",
		DailyCount: 20,
		CreatedAt:  time.Now().UTC(),
	}

	require.NoError(t, store.SaveMonthly(monthly))
	assert.True(t, store.HasMonthly(2024, time.January))
	assert.False(t, store.HasMonthly(2024, time.February))

	err := store.SaveMonthly(monthly)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	got, err := store.GetMonthly(2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, 20, got.DailyCount)
}

func TestStore_CorruptRecordRejectedOnRead(t *testing.T) {
	store := createTestStore(t)

	require.NoError(t, store.SaveDaily(testDaily("2024-01-03")))

	// Strip a required field on disk
	path := store.dailyPath("2024-01-03")
	writeRecord(path, map[string]string{"date": "2024-01-03"})

	date, _ := time.Parse(DateFormat, "2024-01-03")
	_, err := store.GetDaily(date)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
