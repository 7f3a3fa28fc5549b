package service

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	"github.com/Laisky/word-association/library/assoc"
)

// ensureReady fails with model.ErrStoreUnavailable when the association
// table cannot be read or holds no rows.
func (s *Service) ensureReady(ctx context.Context) error {
	n, err := s.deps.Counter.Count(ctx)
	if err != nil {
		s.logger.Error("association store unreachable", zap.Error(err))
		return errors.Wrap(model.ErrStoreUnavailable, err.Error())
	}
	if n == 0 {
		return errors.Wrap(model.ErrStoreUnavailable, "association table is empty")
	}

	return nil
}

// Generate validates in and returns one round of 26 responses.
func (s *Service) Generate(ctx context.Context, in *GenerateInput) ([]string, error) {
	in.Words = trimAll(in.Words)
	in.Used = trimAll(in.Used)
	in.FavoriteLetter = strings.TrimSpace(in.FavoriteLetter)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	pTwoHop := s.settings.PTwoHop
	if in.PTwoHop != nil {
		pTwoHop = *in.PTwoHop
	}

	return s.deps.Generator.Generate(ctx, assoc.Request{
		Cues:           in.Words,
		Used:           in.Used,
		FavoriteLetter: in.FavoriteLetter,
		PTwoHop:        &pTwoHop,
	}), nil
}
