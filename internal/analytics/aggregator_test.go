package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railpulse/internal/models"
)

func seededStore(t *testing.T, scores []int, emergencies []bool, at []time.Time) *models.RecordStore {
	t.Helper()
	s := models.NewRecordStore()
	for i, score := range scores {
		tweet := models.NewTweet("t"+string(rune('a'+i)), "commuter", "report", at[i])
		tweet.SentimentScore = score
		tweet.IsEmergency = emergencies[i]
		require.NoError(t, s.Insert(context.Background(), tweet))
	}
	return s
}

func TestWindow_ResolvePresets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	from, to := Window{}.Resolve(now)
	assert.Equal(t, now.Add(-24*time.Hour), from)
	assert.Equal(t, now, to)

	from, _ = Window{Preset: "7d"}.Resolve(now)
	assert.Equal(t, now.Add(-7*24*time.Hour), from)

	from, _ = Window{Preset: "30d"}.Resolve(now)
	assert.Equal(t, now.Add(-30*24*time.Hour), from)

	from, _ = Window{Preset: "nonsense"}.Resolve(now)
	assert.Equal(t, now.Add(-24*time.Hour), from)
}

func TestWindow_ExplicitBoundsWinOverPreset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	explicitFrom := now.Add(-2 * time.Hour)
	explicitTo := now.Add(-time.Hour)

	from, to := Window{Preset: "7d", From: &explicitFrom, To: &explicitTo}.Resolve(now)
	assert.Equal(t, explicitFrom, from)
	assert.Equal(t, explicitTo, to)
}

func TestSummarize_EmptyWindow(t *testing.T) {
	agg := NewAggregator(models.NewRecordStore())

	summary, err := agg.Summarize(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTweets)
	assert.Equal(t, 0.0, summary.AvgSentiment)
	assert.Equal(t, 0, summary.EmergencyCount)
	assert.Empty(t, summary.Distribution)
}

func TestSummarize_Rollup(t *testing.T) {
	now := time.Now().UTC()
	store := seededStore(t,
		[]int{5, 1, 3, 3},
		[]bool{false, true, false, false},
		[]time.Time{now.Add(-time.Hour), now.Add(-2 * time.Hour), now.Add(-3 * time.Hour), now.Add(-4 * time.Hour)},
	)
	agg := NewAggregator(store)

	summary, err := agg.Summarize(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalTweets)
	assert.InDelta(t, 3.0, summary.AvgSentiment, 0.001)
	assert.Equal(t, 1, summary.EmergencyCount)
	assert.Equal(t, map[int]int{5: 1, 1: 1, 3: 2}, summary.Distribution)
}

func TestSummarize_WindowExcludesOldRecords(t *testing.T) {
	now := time.Now().UTC()
	store := seededStore(t,
		[]int{5, 1},
		[]bool{false, false},
		[]time.Time{now.Add(-time.Hour), now.Add(-48 * time.Hour)},
	)
	agg := NewAggregator(store)

	summary, err := agg.Summarize(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTweets)
	assert.InDelta(t, 5.0, summary.AvgSentiment, 0.001)
}

func TestSummarize_DensePrefillsBuckets(t *testing.T) {
	now := time.Now().UTC()
	store := seededStore(t,
		[]int{4},
		[]bool{false},
		[]time.Time{now.Add(-time.Hour)},
	)
	agg := NewAggregator(store)

	summary, err := agg.Summarize(context.Background(), Window{Dense: true})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 0}, summary.Distribution)
}
