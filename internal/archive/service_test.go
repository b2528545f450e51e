package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railpulse/internal/models"
	"railpulse/internal/structures"
	"railpulse/internal/testutil"
)

func archiveConfig(dir string, compress bool) *structures.Config {
	return &structures.Config{
		Archive: structures.ArchiveConfig{
			Backend:   "fs",
			Container: "tweet-archives",
			Dir:       dir,
			Compress:  compress,
		},
	}
}

func newTestService(t *testing.T, compress bool) (ServiceInterface, *FsStore) {
	t.Helper()
	conf := archiveConfig(t.TempDir(), compress)
	store, err := NewFsStore(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	svc := NewService(conf, store, &testutil.MockCompressor{}, &testutil.MockLogger{}, testutil.NewMockMetrics())
	return svc, store
}

func archiveTweets(n int) []*models.Tweet {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	tweets := make([]*models.Tweet, 0, n)
	for i := 0; i < n; i++ {
		tweet := models.NewTweet(
			"t"+string(rune('a'+i)),
			"commuter",
			"service report with ünïcode 🚄",
			base.Add(time.Duration(i)*time.Minute),
		)
		tweet.SentimentScore = 1 + i%5
		tweets = append(tweets, tweet)
	}
	return tweets
}

func TestDefaultArchiveName(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 45, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "tweets_20250601_083045.json", DefaultArchiveName(at))
}

func TestService_ArchiveAndRetrieveRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, false)
	tweets := archiveTweets(3)

	name, ok := svc.Archive(context.Background(), tweets, "roundtrip.json")
	require.True(t, ok)
	assert.Equal(t, "roundtrip.json", name)

	got, err := svc.Retrieve(context.Background(), name)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, tweet := range got {
		assert.Equal(t, tweets[i].TID, tweet.TID)
		assert.Equal(t, tweets[i].Text, tweet.Text)
		assert.True(t, tweets[i].Timestamp.Equal(tweet.Timestamp))
		assert.Equal(t, tweets[i].SentimentScore, tweet.SentimentScore)
	}
}

func TestService_ArchiveEmptySet(t *testing.T) {
	svc, _ := newTestService(t, false)

	name, ok := svc.Archive(context.Background(), nil, "empty.json")
	require.True(t, ok)

	got, err := svc.Retrieve(context.Background(), name)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_ArchiveDefaultName(t *testing.T) {
	svc, _ := newTestService(t, false)

	name, ok := svc.Archive(context.Background(), archiveTweets(1), "")
	require.True(t, ok)
	assert.Regexp(t, `^tweets_\d{8}_\d{6}\.json$`, name)
}

func TestService_ArchiveOverwritesSameName(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, ok := svc.Archive(context.Background(), archiveTweets(1), "same.json")
	require.True(t, ok)
	_, ok = svc.Archive(context.Background(), archiveTweets(3), "same.json")
	require.True(t, ok)

	got, err := svc.Retrieve(context.Background(), "same.json")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestService_RetrieveMissing(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.Retrieve(context.Background(), "never-written.json")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestService_CompressionAppendsSuffix(t *testing.T) {
	svc, _ := newTestService(t, true)

	name, ok := svc.Archive(context.Background(), archiveTweets(2), "packed.json")
	require.True(t, ok)
	assert.Equal(t, "packed.json.zst", name)

	got, err := svc.Retrieve(context.Background(), name)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_ZstdRoundTrip(t *testing.T) {
	conf := archiveConfig(t.TempDir(), true)
	store, err := NewFsStore(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	svc := NewService(conf, store, compressor, &testutil.MockLogger{}, testutil.NewMockMetrics())

	tweets := archiveTweets(5)
	name, ok := svc.Archive(context.Background(), tweets, "")
	require.True(t, ok)

	got, err := svc.Retrieve(context.Background(), name)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestService_ListByPrefix(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, ok := svc.Archive(context.Background(), archiveTweets(1), "tweets_a.json")
	require.True(t, ok)
	_, ok = svc.Archive(context.Background(), archiveTweets(1), "tweets_b.json")
	require.True(t, ok)
	_, ok = svc.Archive(context.Background(), archiveTweets(1), "other.json")
	require.True(t, ok)

	assert.Equal(t, []string{"tweets_a.json", "tweets_b.json"}, svc.List(context.Background(), "tweets_"))
	assert.Len(t, svc.List(context.Background(), ""), 3)
}

func TestService_ListNoMatches(t *testing.T) {
	svc, _ := newTestService(t, false)

	got := svc.List(context.Background(), "nothing")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// failingStore simulates a storage backend outage.
type failingStore struct{}

func (f *failingStore) Put(_ context.Context, _ string, _ []byte) error { return errors.New("down") }
func (f *failingStore) Get(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("down") }
func (f *failingStore) List(_ context.Context, _ string) ([]string, error) {
	return nil, errors.New("down")
}

func TestService_StorageFailuresAbsorbed(t *testing.T) {
	conf := archiveConfig(t.TempDir(), false)
	logger := &testutil.MockLogger{}
	svc := NewService(conf, &failingStore{}, &testutil.MockCompressor{}, logger, testutil.NewMockMetrics())

	_, ok := svc.Archive(context.Background(), archiveTweets(1), "x.json")
	assert.False(t, ok)

	names := svc.List(context.Background(), "")
	assert.Empty(t, names)

	_, err := svc.Retrieve(context.Background(), "x.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)

	assert.GreaterOrEqual(t, logger.CountByLevel("error"), 3)
}
