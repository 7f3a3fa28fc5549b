package dao

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/internal/web/lwow/model"
)

var (
	_ FeedbackSink = new(LogFeedbackSink)
	_ FeedbackSink = new(QueueFeedbackSink)
)

// FeedbackSink accepts feedback submissions.
type FeedbackSink interface {
	Submit(ctx context.Context, fb *model.Feedback) (id string, err error)
}

// LogFeedbackSink writes feedback to the log only.
type LogFeedbackSink struct {
	logger logSDK.Logger
}

// NewLogFeedbackSink creates a LogFeedbackSink
func NewLogFeedbackSink(logger logSDK.Logger) *LogFeedbackSink {
	return &LogFeedbackSink{logger: logger}
}

// Submit implements FeedbackSink. Every submission gets a fresh UUIDv7.
func (s *LogFeedbackSink) Submit(_ context.Context, fb *model.Feedback) (string, error) {
	id := gutils.UUID7()
	s.write(fb, id)
	return id, nil
}

func (s *LogFeedbackSink) write(fb *model.Feedback, id string) {
	s.logger.Info("feedback received",
		zap.String("feedback_id", id),
		zap.String("session_id", fb.SessionID),
		zap.String("client_ip", fb.ClientIP),
		zap.Int("length", len(fb.Content)),
		zap.String("feedback", fb.Content))
}

// FeedbackQueue pushes feedback onto a queue, implemented by library/db/redis.DB.
type FeedbackQueue interface {
	AddFeedback(ctx context.Context, content, sessionID, clientIP string) (taskID string, err error)
}

// QueueFeedbackSink logs feedback and pushes it onto a queue.
type QueueFeedbackSink struct {
	log   *LogFeedbackSink
	queue FeedbackQueue
}

// NewQueueFeedbackSink creates a QueueFeedbackSink
func NewQueueFeedbackSink(logger logSDK.Logger, queue FeedbackQueue) (*QueueFeedbackSink, error) {
	if queue == nil {
		return nil, errors.New("queue cannot be nil")
	}

	return &QueueFeedbackSink{
		log:   NewLogFeedbackSink(logger),
		queue: queue,
	}, nil
}

// Submit implements FeedbackSink.
func (s *QueueFeedbackSink) Submit(ctx context.Context, fb *model.Feedback) (string, error) {
	id, err := s.queue.AddFeedback(ctx, fb.Content, fb.SessionID, fb.ClientIP)
	s.log.write(fb, id)
	if err != nil {
		return "", errors.Wrap(err, "enqueue feedback")
	}

	return id, nil
}
