package global

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/internal/web/lwow/controller"
	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/internal/web/lwow/service"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/log"
	"github.com/Laisky/word-association/library/throttle"
)

var (
	// LookupStore is what the engine reads, Associations behind an optional redis cache.
	LookupStore assoc.Store
	LwowSvc     *service.Service
	LwowCtl     *controller.Controller
	Throttle    *throttle.ClientThrottle
)

// SetupServices builds the engine and the game service on top of SetupDB.
func SetupServices(ctx context.Context, s Settings) {
	var err error
	if LookupStore, err = newLookupStore(s); err != nil {
		log.Logger.Panic("new lookup store", zap.Error(err))
	}

	sel, err := assoc.NewSelector(LookupStore, assoc.WithLogger(log.Logger.Named("assoc")))
	if err != nil {
		log.Logger.Panic("new selector", zap.Error(err))
	}

	sessions, err := newSessionStore(ctx, s)
	if err != nil {
		log.Logger.Panic("new session store", zap.Error(err))
	}

	var (
		feedback dao.FeedbackSink = dao.NewLogFeedbackSink(log.Logger.Named("feedback"))
		pinger   service.Pinger
	)
	if Redis != nil {
		if feedback, err = dao.NewQueueFeedbackSink(log.Logger.Named("feedback"), Redis); err != nil {
			log.Logger.Panic("new feedback sink", zap.Error(err))
		}
		pinger = Redis
	}

	if LwowSvc, err = service.NewService(service.Deps{
		Counter:   Associations,
		Generator: assoc.NewGenerator(sel),
		Sessions:  sessions,
		Feedback:  feedback,
		Redis:     pinger,
	}, service.Settings{
		PTwoHop:    s.PTwoHop,
		Rounds:     s.Rounds,
		SessionTTL: s.SessionTTL,
	}, log.Logger.Named("lwow_service"), nil); err != nil {
		log.Logger.Panic("new lwow service", zap.Error(err))
	}
	LwowCtl = controller.New(LwowSvc)

	if s.Throttle != nil {
		if Throttle, err = throttle.NewClientThrottle(s.Throttle); err != nil {
			log.Logger.Panic("new throttle", zap.Error(err))
		}
	}
}

func newLookupStore(s Settings) (assoc.Store, error) {
	if Redis == nil || s.CacheTTL <= 0 {
		return Associations, nil
	}

	return dao.NewCachedStore(Associations, Redis.Client(), s.CacheTTL, log.Logger.Named("lookup_cache"))
}

func newSessionStore(ctx context.Context, s Settings) (dao.SessionStore, error) {
	switch s.SessionBackend {
	case SessionBackendSQL:
		return dao.NewSQLSessionStore(ctx, AssocDB)
	case SessionBackendRedis:
		if Redis == nil {
			return nil, errors.New("session backend redis requires settings.db.redis.addr")
		}
		return dao.NewRedisSessionStore(Redis.Client())
	default:
		return nil, errors.Errorf("unknown session backend %q", s.SessionBackend)
	}
}
