package models

import "time"

const (
	ScoreMin     = 1
	ScoreMax     = 5
	ScoreNeutral = 3
)

// Tweet is a classified social media post about rail service.
// TID is the external identifier and is immutable once stored.
type Tweet struct {
	TID                 string    `json:"tid"`
	User                string    `json:"user"`
	Text                string    `json:"tweet"`
	Timestamp           time.Time `json:"timestamp"`
	SentimentScore      int       `json:"sentiment_score"`
	SentimentConfidence float64   `json:"sentiment_confidence"`
	IsEmergency         bool      `json:"is_emergency"`
	CategorySlug        string    `json:"category,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewTweet builds an unclassified record with the neutral defaults.
func NewTweet(tid, user, text string, timestamp time.Time) *Tweet {
	now := time.Now().UTC()
	return &Tweet{
		TID:                 tid,
		User:                user,
		Text:                text,
		Timestamp:           timestamp,
		SentimentScore:      ScoreNeutral,
		SentimentConfidence: 0.0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Validate checks the classification invariants on direct construction.
func (t *Tweet) Validate() error {
	if t.SentimentScore < ScoreMin || t.SentimentScore > ScoreMax {
		return ErrInvalidScore
	}
	if t.SentimentConfidence < 0.0 || t.SentimentConfidence > 1.0 {
		return ErrInvalidConfidence
	}
	return nil
}

// TweetSnapshot is the archived wire form of a Tweet. All timestamps
// are RFC3339 in UTC so a snapshot round-trips exactly.
type TweetSnapshot struct {
	TID                 string  `json:"tid"`
	User                string  `json:"user"`
	Tweet               string  `json:"tweet"`
	Timestamp           string  `json:"timestamp"`
	SentimentScore      int     `json:"sentiment_score"`
	SentimentConfidence float64 `json:"sentiment_confidence"`
	IsEmergency         bool    `json:"is_emergency"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

func (t *Tweet) Snapshot() TweetSnapshot {
	return TweetSnapshot{
		TID:                 t.TID,
		User:                t.User,
		Tweet:               t.Text,
		Timestamp:           t.Timestamp.UTC().Format(time.RFC3339Nano),
		SentimentScore:      t.SentimentScore,
		SentimentConfidence: t.SentimentConfidence,
		IsEmergency:         t.IsEmergency,
		CreatedAt:           t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:           t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Restore rebuilds a Tweet from its archived form.
func (s TweetSnapshot) Restore() (*Tweet, error) {
	ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339Nano, s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &Tweet{
		TID:                 s.TID,
		User:                s.User,
		Text:                s.Tweet,
		Timestamp:           ts,
		SentimentScore:      s.SentimentScore,
		SentimentConfidence: s.SentimentConfidence,
		IsEmergency:         s.IsEmergency,
		CreatedAt:           created,
		UpdatedAt:           updated,
	}, nil
}
