package services

import (
	"context"
	"errors"
	"time"

	"railpulse/internal/alerts"
	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/sentiment"
)

// IncomingTweet is one raw post handed to the pipeline.
type IncomingTweet struct {
	TID       string    `json:"tid"`
	User      string    `json:"user"`
	Text      string    `json:"tweet"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category,omitempty"`
}

// IngestReport summarizes one pipeline run.
type IngestReport struct {
	Received     int `json:"received"`
	Inserted     int `json:"inserted"`
	Duplicates   int `json:"duplicates"`
	AlertsOpened int `json:"alerts_opened"`
}

type PipelineServiceInterface interface {
	Ingest(ctx context.Context, posts []IncomingTweet) (*IngestReport, error)
	ClassifyText(ctx context.Context, text string) sentiment.Result
}

// PipelineService runs the classify → persist → alert flow. A
// cancelled batch persists nothing.
type PipelineService struct {
	classifier sentiment.ClassifierInterface
	records    models.RecordRepository
	alerts     alerts.ManagerInterface
	policy     alerts.TriggerPolicy
	logger     providers.Logger
}

func NewPipelineService(classifier sentiment.ClassifierInterface, records models.RecordRepository, alertManager alerts.ManagerInterface, policy alerts.TriggerPolicy, logger providers.Logger) PipelineServiceInterface {
	return &PipelineService{
		classifier: classifier,
		records:    records,
		alerts:     alertManager,
		policy:     policy,
		logger:     logger,
	}
}

func (s *PipelineService) ClassifyText(ctx context.Context, text string) sentiment.Result {
	return s.classifier.Classify(ctx, text)
}

func (s *PipelineService) Ingest(ctx context.Context, posts []IncomingTweet) (*IngestReport, error) {
	report := &IngestReport{Received: len(posts)}
	if len(posts) == 0 {
		return report, nil
	}

	texts := make([]string, len(posts))
	for i, post := range posts {
		texts[i] = post.Text
	}
	results := s.classifier.ClassifyBatch(ctx, texts)

	// Classification happens before any write so a cancelled batch
	// leaves the store untouched.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, post := range posts {
		tweet := models.NewTweet(post.TID, post.User, post.Text, post.Timestamp)
		tweet.SentimentScore = results[i].Score
		tweet.SentimentConfidence = results[i].Confidence
		if post.Category != "" {
			tweet.CategorySlug = models.Slugify(post.Category)
		}

		level, triggered := s.policy(tweet)
		tweet.IsEmergency = triggered

		if err := s.records.Insert(ctx, tweet); err != nil {
			if errors.Is(err, models.ErrDuplicateID) {
				report.Duplicates++
				s.logger.Debugf(providers.TypePost, "Skipping duplicate record %s", tweet.TID)
				continue
			}
			return report, err
		}
		report.Inserted++

		if triggered {
			if _, err := s.alerts.Open(ctx, tweet, level); err != nil {
				s.logger.Errorf(providers.TypeApp, "Failed to open alert for record %s: %s", tweet.TID, err)
				continue
			}
			report.AlertsOpened++
		}
	}

	s.logger.Infof(providers.TypePost, "Ingested %d/%d records (%d duplicates, %d alerts)",
		report.Inserted, report.Received, report.Duplicates, report.AlertsOpened)
	return report, nil
}
