// Package global wires databases and services from settings.
package global

import (
	"strconv"
	"strings"
	"time"

	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/db/postgres"
	"github.com/Laisky/word-association/library/throttle"
)

const (
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"

	SessionBackendSQL   = "sql"
	SessionBackendRedis = "redis"

	// DefaultClientPerSec and DefaultClientBurst apply when throttling is on
	// but the per-client keys are missing.
	DefaultClientPerSec = 5
	DefaultClientBurst  = 10
)

// Settings are the lwow settings with defaults applied.
type Settings struct {
	DBBackend string
	Postgres  postgres.DialInfo

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	// CacheTTL of zero disables the lookup cache.
	CacheTTL time.Duration

	PTwoHop        float64
	Rounds         int
	SessionTTL     time.Duration
	SessionBackend string

	// Throttle is nil when throttling is not configured.
	Throttle       *throttle.ClientThrottleCfg
	AllowedOrigins []string
}

// LoadSettings reads settings from gconfig.Shared.
func LoadSettings() Settings {
	s := Settings{
		DBBackend: strings.ToLower(strings.TrimSpace(gconfig.S.GetString("settings.lwow.db.backend"))),
		Postgres: postgres.DialInfo{
			Addr:   strings.TrimSpace(gconfig.S.GetString("settings.lwow.db.postgres.addr")),
			Port:   intFromConfig("settings.lwow.db.postgres.port", 0),
			DBName: strings.TrimSpace(gconfig.S.GetString("settings.lwow.db.postgres.dbname")),
			User:   gconfig.S.GetString("settings.lwow.db.postgres.user"),
			Pwd:    gconfig.S.GetString("settings.lwow.db.postgres.pwd"),
		},
		RedisAddr:      strings.TrimSpace(gconfig.S.GetString("settings.db.redis.addr")),
		RedisDB:        intFromConfig("settings.db.redis.db", 0),
		RedisPassword:  gconfig.S.GetString("settings.db.redis.password"),
		CacheTTL:       time.Duration(intFromConfig("settings.lwow.cache.ttl_seconds", 600)) * time.Second,
		PTwoHop:        floatFromConfig("settings.lwow.engine.p_two_hop", assoc.DefaultPTwoHop),
		Rounds:         intFromConfig("settings.lwow.game.rounds", 4),
		SessionTTL:     time.Duration(intFromConfig("settings.lwow.game.session_ttl_minutes", 120)) * time.Minute,
		SessionBackend: strings.ToLower(strings.TrimSpace(gconfig.S.GetString("settings.lwow.game.session_backend"))),
		AllowedOrigins: gconfig.S.GetStringSlice("settings.web.allowed_origins"),
	}

	if s.DBBackend == "" {
		s.DBBackend = BackendSqlite
	}
	if s.SessionBackend == "" {
		s.SessionBackend = SessionBackendSQL
	}

	if perSec := intFromConfig("settings.lwow.throttle.total_per_sec", 0); perSec > 0 {
		s.Throttle = &throttle.ClientThrottleCfg{
			TotalNPerSec:  perSec,
			TotalBurst:    intFromConfig("settings.lwow.throttle.total_burst", throttle.DefaultBurst(perSec, 0)),
			ClientNPerSec: intFromConfig("settings.lwow.throttle.client_per_sec", DefaultClientPerSec),
			MaxClients:    intFromConfig("settings.lwow.throttle.max_clients", throttle.DefaultMaxClients),
		}
		s.Throttle.ClientBurst = intFromConfig("settings.lwow.throttle.client_burst",
			throttle.DefaultBurst(s.Throttle.ClientNPerSec, DefaultClientBurst))
	}

	return s
}

func intFromConfig(key string, def int) int {
	switch v := gconfig.S.Get(key).(type) {
	case nil:
		return def
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

func floatFromConfig(key string, def float64) float64 {
	switch v := gconfig.S.Get(key).(type) {
	case nil:
		return def
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}
