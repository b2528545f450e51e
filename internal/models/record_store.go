package models

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// RecordFilter describes a conjunctive query over stored records.
// Time bounds are inclusive unless the *Exclusive flag is set.
// Results are ordered by timestamp descending unless OrderAsc is set.
type RecordFilter struct {
	From          *time.Time
	To            *time.Time
	FromExclusive bool
	ToExclusive   bool
	// CreatedFrom/CreatedTo bound the ingestion time (CreatedAt) as a
	// half-open window [CreatedFrom, CreatedTo), independent of the
	// tweet's original Timestamp.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Score         *int
	Emergency     *bool
	Contains      string
	Category      string
	Limit         int
	Offset        int
	OrderAsc      bool
}

func (f *RecordFilter) matches(t *Tweet) bool {
	if f.From != nil {
		if f.FromExclusive {
			if !t.Timestamp.After(*f.From) {
				return false
			}
		} else if t.Timestamp.Before(*f.From) {
			return false
		}
	}
	if f.To != nil {
		if f.ToExclusive {
			if !t.Timestamp.Before(*f.To) {
				return false
			}
		} else if t.Timestamp.After(*f.To) {
			return false
		}
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && !t.CreatedAt.Before(*f.CreatedTo) {
		return false
	}
	if f.Score != nil && t.SentimentScore != *f.Score {
		return false
	}
	if f.Emergency != nil && t.IsEmergency != *f.Emergency {
		return false
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(t.Text), strings.ToLower(f.Contains)) {
		return false
	}
	if f.Category != "" && t.CategorySlug != f.Category {
		return false
	}
	return true
}

type RecordRepository interface {
	Insert(ctx context.Context, tweet *Tweet) error
	UpdateClassification(ctx context.Context, tid string, score int, confidence float64, emergency bool) error
	Get(ctx context.Context, tid string) (*Tweet, error)
	Query(ctx context.Context, filter RecordFilter) ([]*Tweet, error)
	Count(ctx context.Context) (int, error)
}

// RecordStore is the in-memory RecordRepository. Duplicate detection
// is atomic under the write lock; reads never block each other.
type RecordStore struct {
	mu   sync.RWMutex
	data map[string]Tweet
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		data: make(map[string]Tweet),
	}
}

func (s *RecordStore) Insert(_ context.Context, tweet *Tweet) error {
	if err := tweet.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[tweet.TID]; exists {
		return ErrDuplicateID
	}
	s.data[tweet.TID] = *tweet
	return nil
}

func (s *RecordStore) UpdateClassification(_ context.Context, tid string, score int, confidence float64, emergency bool) error {
	if score < ScoreMin || score > ScoreMax {
		return ErrInvalidScore
	}
	if confidence < 0.0 || confidence > 1.0 {
		return ErrInvalidConfidence
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[tid]
	if !ok {
		return ErrRecordNotFound
	}
	rec.SentimentScore = score
	rec.SentimentConfidence = confidence
	rec.IsEmergency = emergency
	rec.UpdatedAt = time.Now().UTC()
	s.data[tid] = rec
	return nil
}

func (s *RecordStore) Get(_ context.Context, tid string) (*Tweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[tid]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copy := rec
	return &copy, nil
}

func (s *RecordStore) Query(_ context.Context, filter RecordFilter) ([]*Tweet, error) {
	s.mu.RLock()
	matched := make([]*Tweet, 0)
	for _, rec := range s.data {
		if filter.matches(&rec) {
			copy := rec
			matched = append(matched, &copy)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if filter.OrderAsc {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*Tweet{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *RecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
