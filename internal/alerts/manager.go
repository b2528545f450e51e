package alerts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// TriggerPolicy decides whether a classified record warrants an alert
// and at what level. The manager itself never hard-codes the trigger
// condition.
type TriggerPolicy func(tweet *models.Tweet) (models.AlertLevel, bool)

// DefaultPolicy builds the standard trigger from configuration: a
// sufficiently confident negative classification opens an alert, and
// an emergency keyword in the text raises the level.
func DefaultPolicy(conf *structures.Config) TriggerPolicy {
	threshold := conf.Alerts.ScoreThreshold
	minConfidence := conf.Alerts.MinConfidence
	keywords := make([]string, len(conf.Alerts.Keywords))
	for i, kw := range conf.Alerts.Keywords {
		keywords[i] = strings.ToLower(kw)
	}

	return func(tweet *models.Tweet) (models.AlertLevel, bool) {
		keywordHit := false
		lower := strings.ToLower(tweet.Text)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, kw) {
				keywordHit = true
				break
			}
		}

		negative := tweet.SentimentScore <= threshold && tweet.SentimentConfidence >= minConfidence
		if !negative && !keywordHit {
			return models.LevelLow, false
		}

		switch {
		case keywordHit && tweet.SentimentScore == models.ScoreMin:
			return models.LevelCritical, true
		case keywordHit:
			return models.LevelHigh, true
		case tweet.SentimentScore == models.ScoreMin:
			return models.LevelHigh, true
		default:
			return models.LevelMedium, true
		}
	}
}

type ManagerInterface interface {
	Open(ctx context.Context, tweet *models.Tweet, level models.AlertLevel) (*models.EmergencyAlert, error)
	Resolve(ctx context.Context, id, notes string) (*models.EmergencyAlert, error)
	Get(ctx context.Context, id string) (*models.EmergencyAlert, error)
	List(ctx context.Context, filter models.AlertFilter) ([]*models.EmergencyAlert, error)
}

// Manager persists alerts and drives the single OPEN → RESOLVED
// transition. Resolution is terminal but not idempotent: resolving an
// already resolved alert re-sets the timestamp and overwrites notes.
type Manager struct {
	repo   models.AlertRepository
	logger providers.Logger
}

func NewManager(repo models.AlertRepository, logger providers.Logger) ManagerInterface {
	return &Manager{repo: repo, logger: logger}
}

func (m *Manager) Open(ctx context.Context, tweet *models.Tweet, level models.AlertLevel) (*models.EmergencyAlert, error) {
	now := time.Now().UTC()
	alert := &models.EmergencyAlert{
		ID:        uuid.NewString(),
		TweetTID:  tweet.TID,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.Insert(ctx, alert); err != nil {
		return nil, err
	}
	m.logger.Infof(providers.TypeApp, "Opened %s alert %s for record %s", level, alert.ID, tweet.TID)
	return alert, nil
}

func (m *Manager) Resolve(ctx context.Context, id, notes string) (*models.EmergencyAlert, error) {
	alert, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	alert.IsResolved = true
	alert.ResolvedAt = &now
	alert.UpdatedAt = now
	if notes != "" {
		alert.Notes = notes
	}

	if err := m.repo.Update(ctx, alert); err != nil {
		return nil, err
	}
	m.logger.Infof(providers.TypeApp, "Resolved alert %s", id)
	return alert, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*models.EmergencyAlert, error) {
	return m.repo.Get(ctx, id)
}

func (m *Manager) List(ctx context.Context, filter models.AlertFilter) ([]*models.EmergencyAlert, error) {
	return m.repo.List(ctx, filter)
}
