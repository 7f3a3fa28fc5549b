package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	"github.com/Laisky/word-association/library/assoc"
)

// StartGame opens a session at round 1 with the chosen favorite letter.
func (s *Service) StartGame(ctx context.Context, in *StartGameInput) (*model.Session, error) {
	in.FavoriteLetter = strings.TrimSpace(in.FavoriteLetter)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.clock()
	sess := &model.Session{
		ID:             gutils.UUID7(),
		Round:          1,
		TotalRounds:    s.settings.Rounds,
		FavoriteLetter: strings.ToUpper(in.FavoriteLetter),
		History:        []model.Round{},
		LastAIWords:    []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.deps.Sessions.Save(ctx, sess, s.settings.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "save session")
	}

	s.logger.Info("game started",
		zap.String("session_id", sess.ID),
		zap.String("favorite_letter", sess.FavoriteLetter))
	return sess, nil
}

// GetGame returns the current state of a session.
func (s *Service) GetGame(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.deps.Sessions.Load(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	return sess, nil
}

// SubmitRound records the user's words for the current round.
//
// Every round but the last also runs the generator, avoiding every AI word
// of earlier rounds. The last round only records the words and finishes
// the game. Of two submissions for the same round only the first is kept;
// the other gets model.ErrRoundConflict.
func (s *Service) SubmitRound(ctx context.Context, id string, in *RoundInput) (*model.Session, error) {
	in.Words = trimAll(in.Words)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	sess, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Finished {
		return nil, errors.WithStack(model.ErrGameFinished)
	}

	fromRound := sess.Round
	aiWords := []string{}
	if sess.Round < sess.TotalRounds {
		if err = s.ensureReady(ctx); err != nil {
			return nil, err
		}

		pTwoHop := s.settings.PTwoHop
		aiWords = s.deps.Generator.Generate(ctx, assoc.Request{
			Cues:           in.Words,
			Used:           sess.UsedAIWords(),
			FavoriteLetter: sess.FavoriteLetter,
			PTwoHop:        &pTwoHop,
		})
	} else {
		sess.Finished = true
	}

	sess.History = append(sess.History, model.Round{
		RoundNumber: sess.Round,
		UserWords:   in.Words,
		AIWords:     aiWords,
	})
	sess.LastAIWords = aiWords
	sess.Round++
	sess.UpdatedAt = s.clock()

	if err = s.deps.Sessions.Advance(ctx, sess, fromRound, s.settings.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "advance session")
	}

	s.logger.Info("round submitted",
		zap.String("session_id", sess.ID),
		zap.Int("round", sess.Round-1),
		zap.Bool("finished", sess.Finished))
	return sess, nil
}

// ExportCSV writes the session grid as `round,position,user_word,ai_word` rows.
func (s *Service) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	sess, err := s.GetGame(ctx, id)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err = cw.Write([]string{"round", "position", "user_word", "ai_word"}); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, r := range sess.History {
		for i, userWord := range r.UserWords {
			var aiWord string
			if i < len(r.AIWords) {
				aiWord = r.AIWords[i]
			}

			if err = cw.Write([]string{
				strconv.Itoa(r.RoundNumber),
				strconv.Itoa(i + 1),
				userWord,
				aiWord,
			}); err != nil {
				return errors.Wrap(err, "write csv row")
			}
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
