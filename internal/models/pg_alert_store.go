package models

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// PgAlertStore is the postgres-backed AlertRepository.
type PgAlertStore struct {
	db *sql.DB
}

func NewPgAlertStore(db *sql.DB) *PgAlertStore {
	return &PgAlertStore{db: db}
}

const alertColumns = "id, tweet_tid, alert_level, is_resolved, resolved_at, notes, created_at, updated_at"

func (s *PgAlertStore) Insert(ctx context.Context, alert *EmergencyAlert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emergency_alerts (`+alertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		alert.ID, alert.TweetTID, alert.Level.String(), alert.IsResolved,
		alert.ResolvedAt, alert.Notes, alert.CreatedAt, alert.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PgAlertStore) Get(ctx context.Context, id string) (*EmergencyAlert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+`
		FROM emergency_alerts
		WHERE id = $1`, id)
	return scanAlert(row)
}

func (s *PgAlertStore) Update(ctx context.Context, alert *EmergencyAlert) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE emergency_alerts
		SET is_resolved = $2, resolved_at = $3, notes = $4, updated_at = $5
		WHERE id = $1`,
		alert.ID, alert.IsResolved, alert.ResolvedAt, alert.Notes, alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *PgAlertStore) List(ctx context.Context, filter AlertFilter) ([]*EmergencyAlert, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Resolved != nil {
		where = append(where, "is_resolved = "+arg(*filter.Resolved))
	}
	if filter.Level != nil {
		where = append(where, "alert_level = "+arg(filter.Level.String()))
	}

	query := "SELECT " + alertColumns + " FROM emergency_alerts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*EmergencyAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *PgAlertStore) CountOpen(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emergency_alerts WHERE is_resolved = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return count, nil
}

func scanAlert(row rowScanner) (*EmergencyAlert, error) {
	var (
		alert      EmergencyAlert
		level      string
		resolvedAt sql.NullTime
	)
	err := row.Scan(
		&alert.ID, &alert.TweetTID, &level, &alert.IsResolved,
		&resolvedAt, &alert.Notes, &alert.CreatedAt, &alert.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	alert.Level = ParseAlertLevel(level)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		alert.ResolvedAt = &t
	}
	return &alert, nil
}
