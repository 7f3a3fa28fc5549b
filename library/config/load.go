// Package config loads settings files into the shared configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/library/log"
)

const (
	// EnvDBPath overrides settings.lwow.db.sqlite.path.
	EnvDBPath = "LWOW_DB_PATH"

	defaultSqlitePath = "data/lwow/lwow.sqlite"
)

// LoadFromFile loads cfgPath into gconfig.Shared.
// An empty path keeps the defaults and flags only.
func LoadFromFile(cfgPath string) {
	if cfgPath == "" {
		log.Logger.Info("no configuration file, use defaults")
		return
	}

	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// SqlitePath returns the association database path.
//
// The environment variable wins over settings, and relative paths from
// settings are resolved against the configuration directory.
func SqlitePath() string {
	if p := strings.TrimSpace(os.Getenv(EnvDBPath)); p != "" {
		return p
	}

	p := strings.TrimSpace(gconfig.Shared.GetString("settings.lwow.db.sqlite.path"))
	if p == "" {
		return defaultSqlitePath
	}
	if !filepath.IsAbs(p) {
		if dir := gconfig.Shared.GetString("cfg_dir"); dir != "" {
			return filepath.Join(dir, p)
		}
	}

	return p
}
