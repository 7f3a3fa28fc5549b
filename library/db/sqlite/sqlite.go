// Package sqlite opens database/sql connections to SQLite files.
package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"

	errors "github.com/Laisky/errors/v2"
	_ "github.com/mattn/go-sqlite3"
)

// BuildDSN builds a sqlite3 DSN for path.
//
// Read-only connections require the file to exist.
func BuildDSN(path string, readOnly bool) string {
	q := url.Values{}
	q.Set("_busy_timeout", "5000")
	if readOnly {
		q.Set("mode", "ro")
	} else {
		q.Set("mode", "rwc")
	}

	return "file:" + path + "?" + q.Encode()
}

// NewDB opens the sqlite file at path.
func NewDB(ctx context.Context, path string, readOnly bool) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "stat sqlite file %s", path)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create dir for %s", path)
	}

	db, err := sql.Open("sqlite3", BuildDSN(path, readOnly))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	return db, nil
}
