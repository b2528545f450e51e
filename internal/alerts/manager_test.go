package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// local noop logger; importing testutil here would be an import cycle
type managerTestLogger struct{}

func (m *managerTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *managerTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *managerTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *managerTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *managerTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *managerTestLogger) Close()                                                  {}

func alertsConfig() *structures.Config {
	return &structures.Config{
		Alerts: structures.AlertsConfig{
			ScoreThreshold: 2,
			MinConfidence:  0.6,
			Keywords:       []string{"derail", "crash", "fire"},
		},
	}
}

func policyTweet(text string, score int, confidence float64) *models.Tweet {
	tweet := models.NewTweet("t1", "witness", text, time.Now())
	tweet.SentimentScore = score
	tweet.SentimentConfidence = confidence
	return tweet
}

func TestDefaultPolicy_NoTrigger(t *testing.T) {
	policy := DefaultPolicy(alertsConfig())

	_, ok := policy(policyTweet("smooth ride today", 4, 0.9))
	assert.False(t, ok)

	// Negative but below the confidence floor
	_, ok = policy(policyTweet("pretty bad service", 2, 0.3))
	assert.False(t, ok)
}

func TestDefaultPolicy_ConfidentNegative(t *testing.T) {
	policy := DefaultPolicy(alertsConfig())

	level, ok := policy(policyTweet("awful delays all morning", 2, 0.8))
	require.True(t, ok)
	assert.Equal(t, models.LevelMedium, level)
}

func TestDefaultPolicy_WorstScoreRaisesLevel(t *testing.T) {
	policy := DefaultPolicy(alertsConfig())

	level, ok := policy(policyTweet("unbelievably bad", 1, 0.9))
	require.True(t, ok)
	assert.Equal(t, models.LevelHigh, level)
}

func TestDefaultPolicy_KeywordHit(t *testing.T) {
	policy := DefaultPolicy(alertsConfig())

	level, ok := policy(policyTweet("small fire reported on platform 2", 3, 0.2))
	require.True(t, ok)
	assert.Equal(t, models.LevelHigh, level)
}

func TestDefaultPolicy_KeywordWithWorstScoreIsCritical(t *testing.T) {
	policy := DefaultPolicy(alertsConfig())

	level, ok := policy(policyTweet("train CRASH near the depot", 1, 0.95))
	require.True(t, ok)
	assert.Equal(t, models.LevelCritical, level)
}

func TestManager_OpenAssignsIDAndPersists(t *testing.T) {
	repo := models.NewAlertStore()
	m := NewManager(repo, &managerTestLogger{})
	tweet := policyTweet("derailment at the junction", 1, 0.9)

	alert, err := m.Open(context.Background(), tweet, models.LevelCritical)
	require.NoError(t, err)
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "t1", alert.TweetTID)
	assert.Equal(t, models.LevelCritical, alert.Level)
	assert.False(t, alert.IsResolved)
	assert.Nil(t, alert.ResolvedAt)

	stored, err := repo.Get(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, stored.ID)
}

func TestManager_Resolve(t *testing.T) {
	m := NewManager(models.NewAlertStore(), &managerTestLogger{})
	opened, err := m.Open(context.Background(), policyTweet("fire", 1, 0.9), models.LevelHigh)
	require.NoError(t, err)

	resolved, err := m.Resolve(context.Background(), opened.ID, "fire brigade on site")
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "fire brigade on site", resolved.Notes)
}

func TestManager_ResolveKeepsNotesWhenEmpty(t *testing.T) {
	m := NewManager(models.NewAlertStore(), &managerTestLogger{})
	opened, err := m.Open(context.Background(), policyTweet("fire", 1, 0.9), models.LevelHigh)
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), opened.ID, "first pass")
	require.NoError(t, err)

	again, err := m.Resolve(context.Background(), opened.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "first pass", again.Notes)
}

func TestManager_ResolveTwiceUpdatesTimestamp(t *testing.T) {
	m := NewManager(models.NewAlertStore(), &managerTestLogger{})
	opened, err := m.Open(context.Background(), policyTweet("fire", 1, 0.9), models.LevelHigh)
	require.NoError(t, err)

	first, err := m.Resolve(context.Background(), opened.ID, "first")
	require.NoError(t, err)
	firstAt := *first.ResolvedAt

	time.Sleep(5 * time.Millisecond)

	second, err := m.Resolve(context.Background(), opened.ID, "second")
	require.NoError(t, err)
	assert.True(t, second.ResolvedAt.After(firstAt))
	assert.Equal(t, "second", second.Notes)
}

func TestManager_ResolveMissing(t *testing.T) {
	m := NewManager(models.NewAlertStore(), &managerTestLogger{})

	_, err := m.Resolve(context.Background(), "missing", "notes")
	assert.ErrorIs(t, err, models.ErrAlertNotFound)
}

func TestManager_ListDelegatesFilter(t *testing.T) {
	m := NewManager(models.NewAlertStore(), &managerTestLogger{})
	opened, err := m.Open(context.Background(), policyTweet("fire", 1, 0.9), models.LevelHigh)
	require.NoError(t, err)
	_, err = m.Open(context.Background(), policyTweet("crash", 1, 0.9), models.LevelCritical)
	require.NoError(t, err)
	_, err = m.Resolve(context.Background(), opened.ID, "done")
	require.NoError(t, err)

	resolved := false
	open, err := m.List(context.Background(), models.AlertFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, models.LevelCritical, open[0].Level)
}
