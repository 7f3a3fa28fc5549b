package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"strconv"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	rdb "github.com/Laisky/word-association/library/db/redis"
)

var (
	_ SessionStore = new(SQLSessionStore)
	_ SessionStore = new(RedisSessionStore)

	regexpSessionID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
)

const defaultSessionsTable = "lwow_sessions"

// SessionStore persists game sessions.
//
// Load returns model.ErrSessionNotFound for unknown or expired sessions.
// Advance saves sess only while the stored session is still at fromRound,
// otherwise it returns model.ErrRoundConflict.
type SessionStore interface {
	Load(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session, ttl time.Duration) error
	Advance(ctx context.Context, sess *model.Session, fromRound int, ttl time.Duration) error
}

func validSessionID(id string) error {
	if !regexpSessionID.MatchString(id) {
		return errors.Errorf("invalid session id %q", id)
	}

	return nil
}

// SQLSessionStore keeps sessions as JSON documents in a sql table.
type SQLSessionStore struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

// NewSQLSessionStore creates the session table when missing.
func NewSQLSessionStore(ctx context.Context, db *sql.DB) (*SQLSessionStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	s := &SQLSessionStore{
		db:        db,
		tableName: defaultSessionsTable,
		now:       gutils.Clock.GetUTCNow,
	}

	stmt := `
CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
  id TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  round_no INTEGER NOT NULL DEFAULT 0,
  updated_at BIGINT NOT NULL,
  expire_at BIGINT NOT NULL
)`
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return nil, errors.Wrap(err, "create session table")
	}

	return s, nil
}

// Save upserts sess and pushes its expiry ttl into the future.
func (s *SQLSessionStore) Save(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	if err := validSessionID(sess.ID); err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.Errorf("session ttl must be positive, got %s", ttl)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	now := s.now()
	stmt := `
INSERT INTO ` + s.tableName + ` (id, value, round_no, updated_at, expire_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT(id)
DO UPDATE SET value = EXCLUDED.value, round_no = EXCLUDED.round_no,
  updated_at = EXCLUDED.updated_at, expire_at = EXCLUDED.expire_at`
	if _, err = s.db.ExecContext(ctx, stmt,
		sess.ID, string(payload), sess.Round, now.Unix(), now.Add(ttl).Unix()); err != nil {
		return errors.Wrapf(err, "save session %s", sess.ID)
	}

	return nil
}

// Advance updates the row only if its round_no column still equals fromRound.
func (s *SQLSessionStore) Advance(ctx context.Context,
	sess *model.Session,
	fromRound int,
	ttl time.Duration,
) error {
	if err := validSessionID(sess.ID); err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.Errorf("session ttl must be positive, got %s", ttl)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	now := s.now()
	stmt := `
UPDATE ` + s.tableName + `
SET value = $1, round_no = $2, updated_at = $3, expire_at = $4
WHERE id = $5 AND round_no = $6 AND expire_at > $7`
	res, err := s.db.ExecContext(ctx, stmt,
		string(payload), sess.Round, now.Unix(), now.Add(ttl).Unix(),
		sess.ID, fromRound, now.Unix())
	if err != nil {
		return errors.Wrapf(err, "advance session %s", sess.ID)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(model.ErrRoundConflict, "session %s left round %d", sess.ID, fromRound)
	}

	return nil
}

// Load returns the session unless it is missing or expired.
func (s *SQLSessionStore) Load(ctx context.Context, id string) (*model.Session, error) {
	if err := validSessionID(id); err != nil {
		return nil, errors.Wrap(model.ErrSessionNotFound, err.Error())
	}

	var (
		value    string
		expireAt int64
	)
	stmt := `SELECT value, expire_at FROM ` + s.tableName + ` WHERE id = $1 LIMIT 1`
	if err := s.db.QueryRowContext(ctx, stmt, id).Scan(&value, &expireAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithStack(model.ErrSessionNotFound)
		}
		return nil, errors.Wrapf(err, "load session %s", id)
	}

	if s.now().Unix() >= expireAt {
		return nil, errors.Wrapf(model.ErrSessionNotFound, "session %s expired", id)
	}

	sess := new(model.Session)
	if err := json.Unmarshal([]byte(value), sess); err != nil {
		return nil, errors.Wrapf(err, "unmarshal session %s", id)
	}

	return sess, nil
}

// Purge deletes expired sessions and returns how many were removed.
func (s *SQLSessionStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+s.tableName+` WHERE expire_at <= $1`, s.now().Unix())
	if err != nil {
		return 0, errors.Wrap(err, "purge sessions")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}

	return n, nil
}

// RedisSessionStore keeps sessions as JSON strings with a redis TTL.
type RedisSessionStore struct {
	rdb RedisKV
}

// NewRedisSessionStore creates a redis backed session store
func NewRedisSessionStore(cli RedisKV) (*RedisSessionStore, error) {
	if cli == nil {
		return nil, errors.New("redis cannot be nil")
	}

	return &RedisSessionStore{rdb: cli}, nil
}

// Save implements SessionStore.
func (s *RedisSessionStore) Save(ctx context.Context, sess *model.Session, ttl time.Duration) error {
	if err := validSessionID(sess.ID); err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.Errorf("session ttl must be positive, got %s", ttl)
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	if err = s.rdb.Set(ctx, rdb.KeyPrefixSession+sess.ID, string(payload), ttl).Err(); err != nil {
		return errors.Wrapf(err, "save session %s", sess.ID)
	}

	return nil
}

// Advance claims the fromRound transition with SETNX before writing, so only
// one submission per round can win.
func (s *RedisSessionStore) Advance(ctx context.Context,
	sess *model.Session,
	fromRound int,
	ttl time.Duration,
) error {
	if err := validSessionID(sess.ID); err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.Errorf("session ttl must be positive, got %s", ttl)
	}

	claim := rdb.KeyPrefixSession + sess.ID + "/round/" + strconv.Itoa(fromRound)
	won, err := s.rdb.SetNX(ctx, claim, "1", ttl).Result()
	if err != nil {
		return errors.Wrapf(err, "claim round %d of session %s", fromRound, sess.ID)
	}
	if !won {
		return errors.Wrapf(model.ErrRoundConflict, "session %s left round %d", sess.ID, fromRound)
	}

	if err = s.Save(ctx, sess, ttl); err != nil {
		// let a retry claim the round again
		_ = s.rdb.Del(ctx, claim).Err()
		return err
	}

	return nil
}

// Load implements SessionStore.
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*model.Session, error) {
	if err := validSessionID(id); err != nil {
		return nil, errors.Wrap(model.ErrSessionNotFound, err.Error())
	}

	value, err := s.rdb.Get(ctx, rdb.KeyPrefixSession+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.WithStack(model.ErrSessionNotFound)
		}
		return nil, errors.Wrapf(err, "load session %s", id)
	}

	sess := new(model.Session)
	if err = json.Unmarshal([]byte(value), sess); err != nil {
		return nil, errors.Wrapf(err, "unmarshal session %s", id)
	}

	return sess, nil
}
