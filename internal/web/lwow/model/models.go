// Package model defines the data of the word-association game.
package model

import (
	"time"

	"github.com/Laisky/word-association/library/assoc"
)

// Association is one row of the associations table.
type Association = assoc.Entry

// Round is one played round.
type Round struct {
	RoundNumber int      `json:"roundNumber"`
	UserWords   []string `json:"userWords"`
	AIWords     []string `json:"aiWords"`
}

// Session is the state of one game.
//
// Round starts at 1 once the favorite letter is chosen and reaches
// TotalRounds+1 when the game is finished.
type Session struct {
	ID             string    `json:"id"`
	Round          int       `json:"round"`
	TotalRounds    int       `json:"totalRounds"`
	FavoriteLetter string    `json:"favoriteLetter"`
	History        []Round   `json:"history"`
	LastAIWords    []string  `json:"lastAiWords"`
	Finished       bool      `json:"isFinished"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UsedAIWords flattens the AI words of every recorded round.
func (s *Session) UsedAIWords() []string {
	var words []string
	for _, r := range s.History {
		words = append(words, r.AIWords...)
	}

	return words
}

// Feedback is one user feedback submission.
type Feedback struct {
	Content   string    `json:"feedback"`
	SessionID string    `json:"sessionId,omitempty"`
	ClientIP  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
