package analytics

import (
	"context"
	"time"

	"railpulse/internal/models"
)

// Summary is the read-side rollup for a time window.
type Summary struct {
	TotalTweets    int         `json:"total_tweets"`
	AvgSentiment   float64     `json:"avg_sentiment"`
	EmergencyCount int         `json:"emergency_count"`
	Distribution   map[int]int `json:"sentiment_distribution"`
}

// Window is a half-open description of the aggregation range. Preset
// names cover the dashboard ranges; explicit From/To win over Preset.
type Window struct {
	Preset string
	From   *time.Time
	To     *time.Time
	Dense  bool
}

// Resolve turns a preset into concrete bounds against now. Unknown or
// empty presets fall back to the last 24 hours, mirroring the
// dashboard default.
func (w Window) Resolve(now time.Time) (time.Time, time.Time) {
	if w.From != nil {
		to := now
		if w.To != nil {
			to = *w.To
		}
		return *w.From, to
	}
	switch w.Preset {
	case "7d":
		return now.Add(-7 * 24 * time.Hour), now
	case "30d":
		return now.Add(-30 * 24 * time.Hour), now
	default:
		return now.Add(-24 * time.Hour), now
	}
}

type AggregatorInterface interface {
	Summarize(ctx context.Context, window Window) (*Summary, error)
}

// Aggregator computes rollups over the record store. It has no
// mutation rights.
type Aggregator struct {
	records models.RecordRepository
}

func NewAggregator(records models.RecordRepository) AggregatorInterface {
	return &Aggregator{records: records}
}

func (a *Aggregator) Summarize(ctx context.Context, window Window) (*Summary, error) {
	from, to := window.Resolve(time.Now().UTC())
	tweets, err := a.records.Query(ctx, models.RecordFilter{
		From: &from,
		To:   &to,
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Distribution: make(map[int]int),
	}
	if window.Dense {
		for score := models.ScoreMin; score <= models.ScoreMax; score++ {
			summary.Distribution[score] = 0
		}
	}

	scoreSum := 0
	for _, tweet := range tweets {
		summary.TotalTweets++
		scoreSum += tweet.SentimentScore
		summary.Distribution[tweet.SentimentScore]++
		if tweet.IsEmergency {
			summary.EmergencyCount++
		}
	}

	// Empty window yields zero, never a division error.
	if summary.TotalTweets > 0 {
		summary.AvgSentiment = float64(scoreSum) / float64(summary.TotalTweets)
	}
	return summary, nil
}
