package global

import (
	"context"
	"database/sql"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/library/config"
	"github.com/Laisky/word-association/library/db/postgres"
	rdb "github.com/Laisky/word-association/library/db/redis"
	"github.com/Laisky/word-association/library/db/sqlite"
	"github.com/Laisky/word-association/library/log"
)

var (
	// AssocDB holds the associations table and, with the sql session backend, sessions.
	AssocDB *sql.DB
	// Associations is the SQL association store on AssocDB.
	Associations *dao.SQLStore
	// Redis is nil when settings.db.redis.addr is empty.
	Redis *rdb.DB
)

// OpenAssocDB opens the configured association database.
//
// readOnly only applies to sqlite.
func OpenAssocDB(ctx context.Context, s Settings, readOnly bool) (*sql.DB, error) {
	switch s.DBBackend {
	case BackendSqlite:
		path := config.SqlitePath()
		db, err := sqlite.NewDB(ctx, path, readOnly)
		if err != nil {
			return nil, errors.Wrapf(err, "open sqlite %s", path)
		}
		log.Logger.Info("connected sqlite", zap.String("path", path), zap.Bool("read_only", readOnly))
		return db, nil
	case BackendPostgres:
		db, err := postgres.NewDB(ctx, s.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		log.Logger.Info("connected postgres",
			zap.String("addr", s.Postgres.Addr),
			zap.String("db", s.Postgres.DBName))
		return db.DB, nil
	default:
		return nil, errors.Errorf("unknown db backend %q", s.DBBackend)
	}
}

// SetupDB connects AssocDB and Associations, and Redis when configured.
func SetupDB(ctx context.Context, s Settings, readOnly bool) {
	var err error
	if AssocDB, err = OpenAssocDB(ctx, s, readOnly); err != nil {
		log.Logger.Panic("connect association db", zap.Error(err))
	}
	if Associations, err = dao.NewSQLStore(AssocDB); err != nil {
		log.Logger.Panic("new association store", zap.Error(err))
	}

	setupRedis(ctx, s)
}

func setupRedis(ctx context.Context, s Settings) {
	if s.RedisAddr == "" {
		log.Logger.Info("redis disabled")
		return
	}

	Redis = rdb.NewDB(&redis.Options{
		Addr:     s.RedisAddr,
		DB:       s.RedisDB,
		Password: s.RedisPassword,
	})
	if err := Redis.Ping(ctx); err != nil {
		log.Logger.Panic("connect redis", zap.Error(err), zap.String("addr", s.RedisAddr))
	}

	log.Logger.Info("connected redis", zap.String("addr", s.RedisAddr))
}

// CloseDB releases every connection opened by SetupDB.
func CloseDB() {
	if AssocDB != nil {
		if err := AssocDB.Close(); err != nil {
			log.Logger.Warn("close association db", zap.Error(err))
		}
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Logger.Warn("close redis", zap.Error(err))
		}
	}
}
