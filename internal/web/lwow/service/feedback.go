package service

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"

	"github.com/Laisky/word-association/internal/web/lwow/model"
)

// SubmitFeedback validates and forwards one feedback submission.
func (s *Service) SubmitFeedback(ctx context.Context, in *FeedbackInput, clientIP string) (string, error) {
	in.Feedback = strings.TrimSpace(in.Feedback)
	in.SessionID = strings.TrimSpace(in.SessionID)
	if err := validateStruct(in); err != nil {
		return "", err
	}

	id, err := s.deps.Feedback.Submit(ctx, &model.Feedback{
		Content:   in.Feedback,
		SessionID: in.SessionID,
		ClientIP:  clientIP,
		CreatedAt: s.clock(),
	})
	if err != nil {
		return "", errors.Wrap(err, "submit feedback")
	}

	return id, nil
}
