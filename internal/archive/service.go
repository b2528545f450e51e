package archive

import (
	"context"
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"railpulse/internal/archive/interfaces"
	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// ErrSnapshotNotFound is returned by Retrieve for a name with no
// stored snapshot.
var ErrSnapshotNotFound = errors.New("archive snapshot not found")

const compressedSuffix = ".zst"

// DefaultArchiveName derives a snapshot name from the capture time at
// second precision. Two snapshots taken within the same second collide
// (last write wins); callers needing stronger uniqueness supply an
// explicit name.
func DefaultArchiveName(now time.Time) string {
	return "tweets_" + now.UTC().Format("20060102_150405") + ".json"
}

type ServiceInterface interface {
	Archive(ctx context.Context, tweets []*models.Tweet, name string) (string, bool)
	Retrieve(ctx context.Context, name string) ([]*models.Tweet, error)
	List(ctx context.Context, prefix string) []string
}

// Service serializes record sets into named, immutable snapshots.
// Transient storage failures are absorbed: Archive reports false,
// List reports empty, and both log the underlying cause. Retries are
// the caller's responsibility.
type Service struct {
	store      ObjectStore
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	compress   bool
}

func NewService(conf *structures.Config, store ObjectStore, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ServiceInterface {
	return &Service{
		store:      store,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		compress:   conf.Archive.Compress,
	}
}

// Archive stores the given records under name, or under a timestamp
// derived name when name is empty. Returns the name actually used and
// whether the write succeeded. An empty record set produces an empty
// snapshot, not an error.
func (s *Service) Archive(ctx context.Context, tweets []*models.Tweet, name string) (string, bool) {
	start := time.Now()
	if name == "" {
		name = DefaultArchiveName(start)
	}

	snapshots := make([]models.TweetSnapshot, 0, len(tweets))
	for _, tweet := range tweets {
		snapshots = append(snapshots, tweet.Snapshot())
	}

	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		s.logger.Errorf(providers.TypeArchive, "Failed to serialize archive %s: %s", name, err)
		return name, false
	}

	if s.compress {
		compressed, err := s.compressor.Compress(data)
		if err != nil {
			s.logger.Errorf(providers.TypeArchive, "Failed to compress archive %s: %s", name, err)
			return name, false
		}
		data = compressed
		name += compressedSuffix
	}

	if err := s.store.Put(ctx, name, data); err != nil {
		s.logger.Errorf(providers.TypeArchive, "Failed to archive tweets to %s: %s", name, err)
		return name, false
	}

	s.metrics.ObserveArchiveDuration(time.Since(start))
	s.logger.Infof(providers.TypeArchive, "Successfully archived %d tweets to %s", len(snapshots), name)
	return name, true
}

// Retrieve loads a snapshot by name and reconstructs its records.
// A missing snapshot yields ErrSnapshotNotFound; any other failure is
// logged and returned as-is.
func (s *Service) Retrieve(ctx context.Context, name string) ([]*models.Tweet, error) {
	data, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, ErrSnapshotNotFound
		}
		s.logger.Errorf(providers.TypeArchive, "Failed to retrieve archive %s: %s", name, err)
		return nil, err
	}

	if strings.HasSuffix(name, compressedSuffix) {
		data, err = s.compressor.Decompress(data)
		if err != nil {
			s.logger.Errorf(providers.TypeArchive, "Failed to decompress archive %s: %s", name, err)
			return nil, err
		}
	}

	var snapshots []models.TweetSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		s.logger.Errorf(providers.TypeArchive, "Failed to parse archive %s: %s", name, err)
		return nil, err
	}

	tweets := make([]*models.Tweet, 0, len(snapshots))
	for _, snap := range snapshots {
		tweet, err := snap.Restore()
		if err != nil {
			s.logger.Errorf(providers.TypeArchive, "Failed to restore record %s from archive %s: %s", snap.TID, name, err)
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, nil
}

// List returns snapshot names matching the prefix. An empty result is
// an empty slice; storage failures are logged and reported the same
// way so callers see an empty listing rather than a transport error.
func (s *Service) List(ctx context.Context, prefix string) []string {
	names, err := s.store.List(ctx, prefix)
	if err != nil {
		s.logger.Errorf(providers.TypeArchive, "Failed to list archives with prefix %q: %s", prefix, err)
		return []string{}
	}
	return names
}
