package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pollboard/internal/retry"
)

func NewPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// The database may still be starting; back off instead of failing the
	// first ping.
	pingCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = retry.Do(pingCtx, 5, 500*time.Millisecond, func() error {
		ctx, cancel := context.WithTimeout(pingCtx, 2*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
