// Package postgres opens database/sql connections to PostgreSQL through pgx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	errors "github.com/Laisky/errors/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB postgres db
type DB struct {
	DB *sql.DB
}

// DialInfo postgres dial info
type DialInfo struct {
	Addr,
	DBName,
	User,
	Pwd string
	Port int
}

// BuildDSN builds a PostgreSQL DSN.
func BuildDSN(dialInfo DialInfo) string {
	port := dialInfo.Port
	if port <= 0 {
		port = 5432
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		dialInfo.Addr, dialInfo.User, dialInfo.Pwd, dialInfo.DBName, port)
}

// NewDB create a new postgres db
func NewDB(ctx context.Context, dialInfo DialInfo) (*DB, error) {
	if dialInfo.Addr == "" || dialInfo.DBName == "" {
		return nil, errors.New("postgres addr and dbname are required")
	}

	db, err := sql.Open("pgx", BuildDSN(dialInfo))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	// config db
	db.SetMaxIdleConns(6)
	db.SetMaxOpenConns(50)
	db.SetConnMaxLifetime(time.Hour)

	return &DB{DB: db}, nil
}
