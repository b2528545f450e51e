package models

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PgRecordStore is the postgres-backed RecordRepository. Duplicate
// detection rides on the unique constraint over tid.
type PgRecordStore struct {
	db *sql.DB
}

func NewPgRecordStore(db *sql.DB) *PgRecordStore {
	return &PgRecordStore{db: db}
}

const recordColumns = "tid, usr, tweet, ts, sentiment_score, sentiment_confidence, is_emergency, category_slug, created_at, updated_at"

func (s *PgRecordStore) Insert(ctx context.Context, tweet *Tweet) error {
	if err := tweet.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tweets (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tweet.TID, tweet.User, tweet.Text, tweet.Timestamp,
		tweet.SentimentScore, tweet.SentimentConfidence, tweet.IsEmergency,
		tweet.CategorySlug, tweet.CreatedAt, tweet.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert tweet: %w", err)
	}
	return nil
}

func (s *PgRecordStore) UpdateClassification(ctx context.Context, tid string, score int, confidence float64, emergency bool) error {
	if score < ScoreMin || score > ScoreMax {
		return ErrInvalidScore
	}
	if confidence < 0.0 || confidence > 1.0 {
		return ErrInvalidConfidence
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tweets
		SET sentiment_score = $2, sentiment_confidence = $3, is_emergency = $4, updated_at = $5
		WHERE tid = $1`,
		tid, score, confidence, emergency, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PgRecordStore) Get(ctx context.Context, tid string) (*Tweet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM tweets
		WHERE tid = $1`, tid)
	return scanTweet(row)
}

func (s *PgRecordStore) Query(ctx context.Context, filter RecordFilter) ([]*Tweet, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.From != nil {
		op := ">="
		if filter.FromExclusive {
			op = ">"
		}
		where = append(where, "ts "+op+" "+arg(*filter.From))
	}
	if filter.To != nil {
		op := "<="
		if filter.ToExclusive {
			op = "<"
		}
		where = append(where, "ts "+op+" "+arg(*filter.To))
	}
	if filter.CreatedFrom != nil {
		where = append(where, "created_at >= "+arg(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		where = append(where, "created_at < "+arg(*filter.CreatedTo))
	}
	if filter.Score != nil {
		where = append(where, "sentiment_score = "+arg(*filter.Score))
	}
	if filter.Emergency != nil {
		where = append(where, "is_emergency = "+arg(*filter.Emergency))
	}
	if filter.Contains != "" {
		where = append(where, "tweet ILIKE "+arg("%"+filter.Contains+"%"))
	}
	if filter.Category != "" {
		where = append(where, "category_slug = "+arg(filter.Category))
	}

	query := "SELECT " + recordColumns + " FROM tweets"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.OrderAsc {
		query += " ORDER BY ts ASC"
	} else {
		query += " ORDER BY ts DESC"
	}
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	tweets := make([]*Tweet, 0)
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, rows.Err()
}

func (s *PgRecordStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tweets: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTweet(row rowScanner) (*Tweet, error) {
	var (
		tweet    Tweet
		category sql.NullString
	)
	err := row.Scan(
		&tweet.TID, &tweet.User, &tweet.Text, &tweet.Timestamp,
		&tweet.SentimentScore, &tweet.SentimentConfidence, &tweet.IsEmergency,
		&category, &tweet.CreatedAt, &tweet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tweet: %w", err)
	}
	tweet.CategorySlug = category.String
	return &tweet, nil
}
