// Package service implements the word-association game on top of the engine.
package service

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/log"
)

const (
	defaultRounds     = 4
	defaultSessionTTL = 2 * time.Hour
)

// Counter reports how many associations the store holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Pinger checks an optional backend such as redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Settings tunes the game.
type Settings struct {
	// PTwoHop is used when a request does not carry its own.
	PTwoHop float64
	// Rounds is the number of rounds; the last one runs no AI.
	Rounds     int
	SessionTTL time.Duration
}

// Deps are the collaborators of Service. Redis is optional.
type Deps struct {
	Counter   Counter
	Generator *assoc.Generator
	Sessions  dao.SessionStore
	Feedback  dao.FeedbackSink
	Redis     Pinger
}

// Service coordinates generation, games, feedback and health.
type Service struct {
	deps     Deps
	settings Settings
	logger   logSDK.Logger
	clock    func() time.Time
}

// NewService validates deps and fills unset settings with defaults.
func NewService(deps Deps, settings Settings, logger logSDK.Logger, clock func() time.Time) (*Service, error) {
	switch {
	case deps.Counter == nil:
		return nil, errors.New("counter is required")
	case deps.Generator == nil:
		return nil, errors.New("generator is required")
	case deps.Sessions == nil:
		return nil, errors.New("session store is required")
	case deps.Feedback == nil:
		return nil, errors.New("feedback sink is required")
	}

	if settings.PTwoHop < 0 || settings.PTwoHop > 1 {
		return nil, errors.Errorf("p_two_hop must be in [0,1], got %v", settings.PTwoHop)
	}
	if settings.Rounds <= 0 {
		settings.Rounds = defaultRounds
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = defaultSessionTTL
	}
	if logger == nil {
		logger = log.Logger.Named("lwow_service")
	}
	if clock == nil {
		clock = gutils.Clock.GetUTCNow
	}

	return &Service{
		deps:     deps,
		settings: settings,
		logger:   logger,
		clock:    clock,
	}, nil
}

// Settings returns the effective settings
func (s *Service) Settings() Settings {
	return s.settings
}
