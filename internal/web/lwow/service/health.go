package service

import (
	"context"
	"os"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"
)

// Health is the result of a readiness check.
type Health struct {
	OK       bool   `json:"ok"`
	Rows     int64  `json:"rows"`
	RSSBytes uint64 `json:"rss_bytes,omitempty"`
}

// Health counts the associations and pings redis concurrently.
// Process memory is best effort and never fails the check.
func (s *Service) Health(ctx context.Context) (*Health, error) {
	h := &Health{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.deps.Counter.Count(gctx)
		if err != nil {
			return errors.Wrap(err, "count associations")
		}
		h.Rows = n
		return nil
	})
	if s.deps.Redis != nil {
		g.Go(func() error {
			return errors.Wrap(s.deps.Redis.Ping(gctx), "ping redis")
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err != nil {
		s.logger.Debug("open own process", zap.Error(err))
	} else if mem, err := proc.MemoryInfoWithContext(ctx); err != nil {
		s.logger.Debug("read process memory", zap.Error(err))
	} else {
		h.RSSBytes = mem.RSS
	}

	h.OK = true
	return h, nil
}
