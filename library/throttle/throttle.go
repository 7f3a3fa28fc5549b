// Package throttle limits request rates per client and in total.
package throttle

import (
	errors "github.com/Laisky/errors/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// DefaultMaxClients bounds how many client limiters are kept at once.
const DefaultMaxClients = 10000

// ClientThrottleCfg configuration for ClientThrottle
type ClientThrottleCfg struct {
	TotalNPerSec, TotalBurst   int
	ClientNPerSec, ClientBurst int
	// MaxClients caps the tracked clients, DefaultMaxClients when zero.
	// The least recently seen client is forgotten first.
	MaxClients int
}

// ClientThrottle throttle for generation requests
type ClientThrottle struct {
	cfg     *ClientThrottleCfg
	total   *rate.Limiter
	clients *lru.Cache[string, *rate.Limiter]
}

// NewClientThrottle create new ClientThrottle
func NewClientThrottle(cfg *ClientThrottleCfg) (t *ClientThrottle, err error) {
	if cfg == nil {
		return nil, errors.New("cfg cannot be nil")
	}
	if cfg.TotalNPerSec <= 0 || cfg.ClientNPerSec <= 0 {
		return nil, errors.New("NPerSec must bigger than 0")
	}
	if cfg.TotalBurst < cfg.TotalNPerSec || cfg.ClientBurst < cfg.ClientNPerSec {
		return nil, errors.New("burst must bigger than NPerSec")
	}
	if cfg.MaxClients < 0 {
		return nil, errors.New("MaxClients cannot be negative")
	}

	size := cfg.MaxClients
	if size == 0 {
		size = DefaultMaxClients
	}
	clients, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, errors.Wrap(err, "new client cache")
	}

	return &ClientThrottle{
		cfg:     cfg,
		total:   rate.NewLimiter(rate.Limit(cfg.TotalNPerSec), cfg.TotalBurst),
		clients: clients,
	}, nil
}

// Allow reports whether client may issue one more request now
func (t *ClientThrottle) Allow(client string) bool {
	lim, ok := t.clients.Get(client)
	if !ok {
		fresh := rate.NewLimiter(rate.Limit(t.cfg.ClientNPerSec), t.cfg.ClientBurst)
		if prev, found, _ := t.clients.PeekOrAdd(client, fresh); found {
			lim = prev
		} else {
			lim = fresh
		}
	}

	return lim.Allow() && t.total.Allow()
}

// Clients returns how many client limiters are currently tracked.
func (t *ClientThrottle) Clients() int {
	return t.clients.Len()
}

// DefaultBurst is the burst used when only a rate is configured:
// twice the rate, and never below floor.
func DefaultBurst(perSec, floor int) int {
	return max(perSec*2, floor)
}
