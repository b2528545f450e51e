package models

import (
	"context"
	"sort"
	"sync"
)

// AlertFilter narrows List results. Resolved and Level are optional.
type AlertFilter struct {
	Resolved *bool
	Level    *AlertLevel
	Limit    int
	Offset   int
}

type AlertRepository interface {
	Insert(ctx context.Context, alert *EmergencyAlert) error
	Get(ctx context.Context, id string) (*EmergencyAlert, error)
	Update(ctx context.Context, alert *EmergencyAlert) error
	List(ctx context.Context, filter AlertFilter) ([]*EmergencyAlert, error)
	CountOpen(ctx context.Context) (int, error)
}

// AlertStore is the in-memory AlertRepository.
type AlertStore struct {
	mu   sync.RWMutex
	data map[string]EmergencyAlert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{
		data: make(map[string]EmergencyAlert),
	}
}

func (s *AlertStore) Insert(_ context.Context, alert *EmergencyAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[alert.ID]; exists {
		return ErrDuplicateID
	}
	s.data[alert.ID] = *alert
	return nil
}

func (s *AlertStore) Get(_ context.Context, id string) (*EmergencyAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.data[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	copy := alert
	return &copy, nil
}

func (s *AlertStore) Update(_ context.Context, alert *EmergencyAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[alert.ID]; !ok {
		return ErrAlertNotFound
	}
	s.data[alert.ID] = *alert
	return nil
}

func (s *AlertStore) List(_ context.Context, filter AlertFilter) ([]*EmergencyAlert, error) {
	s.mu.RLock()
	matched := make([]*EmergencyAlert, 0)
	for _, alert := range s.data {
		if filter.Resolved != nil && alert.IsResolved != *filter.Resolved {
			continue
		}
		if filter.Level != nil && alert.Level != *filter.Level {
			continue
		}
		copy := alert
		matched = append(matched, &copy)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*EmergencyAlert{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *AlertStore) CountOpen(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, alert := range s.data {
		if !alert.IsResolved {
			count++
		}
	}
	return count, nil
}
