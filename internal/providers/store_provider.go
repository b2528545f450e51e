package providers

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"railpulse/internal/models"
	"railpulse/internal/structures"
)

// NewDatabaseProvider opens the postgres connection pool when the
// store backend is postgres. For the memory backend it returns nil;
// the repository providers fall back to the in-process stores.
func NewDatabaseProvider(conf *structures.Config, logger Logger) (*sql.DB, error) {
	if conf.Store.Backend != "postgres" {
		return nil, nil
	}
	if conf.Store.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required for the postgres backend")
	}

	db, err := sql.Open("postgres", conf.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Infof(TypeApp, "Connected to postgres record store")
	return db, nil
}

func NewRecordRepository(conf *structures.Config, db *sql.DB, logger Logger) models.RecordRepository {
	if conf.Store.Backend == "postgres" && db != nil {
		return models.NewPgRecordStore(db)
	}
	logger.Infof(TypeApp, "Using in-memory record store")
	return models.NewRecordStore()
}

func NewAlertRepository(conf *structures.Config, db *sql.DB) models.AlertRepository {
	if conf.Store.Backend == "postgres" && db != nil {
		return models.NewPgAlertStore(db)
	}
	return models.NewAlertStore()
}
