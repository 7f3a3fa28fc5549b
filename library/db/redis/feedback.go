package redis

import (
	"context"
	"encoding/json"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
)

// AddFeedback pushes a feedback submission onto the feedback queue as JSON
func (db *DB) AddFeedback(ctx context.Context,
	content string,
	sessionID string,
	clientIP string,
) (taskID string, err error) {
	taskID = gutils.UUID7()

	task := &FeedbackTask{
		TaskID:    taskID,
		Content:   content,
		SessionID: sessionID,
		ClientIP:  clientIP,
		CreatedAt: gutils.Clock.GetUTCNow(),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return taskID, errors.Wrap(err, "marshal feedback task")
	}

	// only the oldest entries beyond FeedbackQueueMaxLen are ever trimmed
	if err = db.db.RPush(ctx, KeyFeedbackQueue, []any{string(payload)},
		db.db.WithMaxLength(FeedbackQueueMaxLen),
		db.db.WithTrimSize(FeedbackQueueMaxLen),
	); err != nil {
		return taskID, errors.Wrap(err, "rpush")
	}

	return taskID, nil
}
