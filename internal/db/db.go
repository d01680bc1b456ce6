// Package db opens the PostgreSQL pool and applies the embedded schema
// migrations.
package db

import (
	"context"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// Open opens a PostgreSQL connection pool for databaseURL and verifies it
// answers a ping.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := sqlx.Open(DriverName, databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
