package redis

import "time"

// FeedbackTask is one queued feedback submission
type FeedbackTask struct {
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	SessionID string    `json:"session_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
