package model

import (
	"fmt"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

var (
	// ErrStoreUnavailable means the association table cannot be read or is empty.
	ErrStoreUnavailable = errors.New("association store unavailable")
	// ErrSessionNotFound means the game session does not exist or has expired.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrGameFinished means a round was submitted after the last one.
	ErrGameFinished = errors.New("game already finished")
	// ErrRoundConflict means another submission advanced the session first.
	ErrRoundConflict = errors.New("round already submitted")
)

// Issue is one validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every validation issue of one request.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, fmt.Sprintf("%s: %s", is.Path, is.Message))
	}

	return "invalid input: " + strings.Join(msgs, "; ")
}
