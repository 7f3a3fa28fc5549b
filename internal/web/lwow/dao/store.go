// Package dao reads and writes the association table, the lookup cache,
// game sessions and feedback.
package dao

import (
	"context"
	"database/sql"
	"regexp"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/word-association/library/assoc"
)

var (
	_ assoc.Store = new(SQLStore)

	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

const defaultAssociationsTable = "associations"

// SQLStore is the association table on sqlite or postgres.
type SQLStore struct {
	opt *storeOption
	db  *sql.DB
}

type storeOption struct {
	tableName string
}

// StoreOption configures SQLStore
type StoreOption func(*storeOption) error

// WithTableName sets the association table name
func WithTableName(tableName string) StoreOption {
	return func(o *storeOption) error {
		if !regexpTableName.MatchString(tableName) {
			return errors.Errorf("invalid table name: %s", tableName)
		}
		o.tableName = tableName
		return nil
	}
}

// NewSQLStore creates a SQLStore on db.
// It does not create the table; call Migrate for that.
func NewSQLStore(db *sql.DB, opts ...StoreOption) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	o := &storeOption{tableName: defaultAssociationsTable}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return &SQLStore{opt: o, db: db}, nil
}

// Migrate creates the association table and its letter index.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.opt.tableName + ` (
  cue TEXT PRIMARY KEY,
  letter TEXT NOT NULL,
  assoc1 TEXT NOT NULL,
  assoc2 TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.opt.tableName + `_letter ON ` + s.opt.tableName + ` (letter)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate association table")
		}
	}

	return nil
}

// LookupByCue implements assoc.Store.
func (s *SQLStore) LookupByCue(ctx context.Context, cue string) (*assoc.Entry, error) {
	stmt := `SELECT cue, letter, assoc1, assoc2 FROM ` + s.opt.tableName + ` WHERE cue = $1 LIMIT 1`
	return s.queryOne(ctx, stmt, cue)
}

// LookupRandomByLetter implements assoc.Store.
func (s *SQLStore) LookupRandomByLetter(ctx context.Context, letter string) (*assoc.Entry, error) {
	stmt := `SELECT cue, letter, assoc1, assoc2 FROM ` + s.opt.tableName + ` WHERE letter = $1 ORDER BY random() LIMIT 1`
	return s.queryOne(ctx, stmt, letter)
}

func (s *SQLStore) queryOne(ctx context.Context, stmt string, arg string) (*assoc.Entry, error) {
	var e assoc.Entry
	err := s.db.QueryRowContext(ctx, stmt, arg).Scan(&e.Cue, &e.Letter, &e.Assoc1, &e.Assoc2)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "query association")
	}

	return &e, nil
}

// Count returns the number of associations.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+s.opt.tableName).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count associations")
	}

	return n, nil
}

// Upsert writes entries in one transaction and returns how many were written.
//
// Cues are normalized and the letter is derived from the cue when empty;
// entries whose cue normalizes to nothing are skipped.
func (s *SQLStore) Upsert(ctx context.Context, entries []assoc.Entry) (n int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+s.opt.tableName+` (cue, letter, assoc1, assoc2)
VALUES ($1, $2, $3, $4)
ON CONFLICT(cue)
DO UPDATE SET letter = EXCLUDED.letter, assoc1 = EXCLUDED.assoc1, assoc2 = EXCLUDED.assoc2`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare upsert")
	}
	defer stmt.Close()

	for _, e := range entries {
		cue := assoc.Normalize(e.Cue)
		if cue == "" {
			continue
		}
		letter := e.Letter
		if letter == "" {
			letter = cue[:1]
		}

		if _, err = stmt.ExecContext(ctx, cue, letter, e.Assoc1, e.Assoc2); err != nil {
			return n, errors.Wrapf(err, "upsert association %s", cue)
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}

	return n, nil
}
