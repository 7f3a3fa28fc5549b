package assoc

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/word-association/library/log"
)

const (
	// SentinelBlank is returned for a cue with no usable characters.
	SentinelBlank = "blank"
	// SentinelUnknown ("I don't know") is returned when no candidate can be produced.
	SentinelUnknown = "idk"

	// DefaultPTwoHop is the probability of following a second association hop.
	DefaultPTwoHop = 0.28

	directWeight = 1.0
	twoHopWeight = 0.65

	defaultFallbackLetter = "a"
)

// Selector chooses one response word for one cue.
type Selector struct {
	store  Store
	rnd    Rand
	logger logSDK.Logger
}

type option struct {
	rnd    Rand
	logger logSDK.Logger
}

// Option configures a Selector.
type Option func(*option) error

// WithRand replaces the shared random source.
func WithRand(rnd Rand) Option {
	return func(o *option) error {
		if rnd == nil {
			return errors.New("rand cannot be nil")
		}
		o.rnd = rnd
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(o *option) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// NewSelector creates a Selector reading from store.
func NewSelector(store Store, opts ...Option) (*Selector, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}

	o := &option{
		rnd:    SharedRand,
		logger: log.Logger.Named("assoc"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return &Selector{
		store:  store,
		rnd:    o.rnd,
		logger: o.logger,
	}, nil
}

// candidateBag accumulates weights per candidate and remembers insertion order,
// so a given random sequence always yields the same draw.
type candidateBag struct {
	keys    []string
	weights map[string]float64
}

func newCandidateBag() *candidateBag {
	return &candidateBag{weights: make(map[string]float64, 6)}
}

func (b *candidateBag) add(candidate string, weight float64) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return
	}

	if _, ok := b.weights[c]; !ok {
		b.keys = append(b.keys, c)
	}
	b.weights[c] += weight
}

func (b *candidateBag) empty() bool {
	return len(b.keys) == 0
}

// ChooseResponse returns the response word for cueRaw.
//
// It never fails: store errors are logged and treated as a miss, and every
// path ends in a real word, SentinelBlank or SentinelUnknown.
func (s *Selector) ChooseResponse(ctx context.Context,
	cueRaw string,
	used UsedSet,
	favoriteLetter string,
	pTwoHop float64,
) string {
	cue := Normalize(cueRaw)
	if cue == "" {
		return SentinelBlank
	}

	bag := newCandidateBag()
	if row := s.lookupByCue(ctx, cue); row != nil {
		bag.add(row.Assoc1, directWeight)
		bag.add(row.Assoc2, directWeight)

		if s.rnd.Float64() < pTwoHop {
			for _, w := range row.Words() {
				hop := Normalize(w)
				if hop == "" {
					continue
				}
				if row2 := s.lookupByCue(ctx, hop); row2 != nil {
					bag.add(row2.Assoc1, twoHopWeight)
					bag.add(row2.Assoc2, twoHopWeight)
				}
			}
		}
	}

	if bag.empty() {
		return s.fallback(ctx, cue, used)
	}

	wc := WeightContext{
		CueFirst:       firstChar(cue),
		FavoriteLetter: strings.ToLower(favoriteLetter),
		Used:           used,
	}
	items := make([]Weighted[string], 0, len(bag.keys))
	for _, c := range bag.keys {
		items = append(items, Weighted[string]{
			Item:   c,
			Weight: AdjustWeight(c, bag.weights[c], wc),
		})
	}

	picked, ok := WeightedPick(items, s.rnd)
	if !ok {
		return SentinelUnknown
	}

	s.logger.Debug("choose response",
		zap.String("cue", cue),
		zap.Int("candidates", len(items)),
		zap.String("picked", picked))
	return picked
}

// fallback answers with a random same-letter entry when the cue yields no candidates.
func (s *Selector) fallback(ctx context.Context, cue string, used UsedSet) string {
	letter := firstChar(cue)
	if letter == "" {
		letter = defaultFallbackLetter
	}

	row, err := s.store.LookupRandomByLetter(ctx, letter)
	if err != nil {
		s.logger.Warn("lookup random by letter", zap.Error(err), zap.String("letter", letter))
		return SentinelUnknown
	}
	if row == nil {
		return SentinelUnknown
	}

	picked, other := row.Assoc1, row.Assoc2
	if s.rnd.Float64() >= 0.5 {
		picked, other = other, picked
	}

	token := Normalize(picked)
	if token == "" {
		token = strings.ToLower(picked)
	}
	if used.Has(token) && other != "" {
		picked = other
	}

	if strings.TrimSpace(picked) == "" {
		if strings.TrimSpace(other) == "" {
			return SentinelUnknown
		}
		picked = other
	}

	return picked
}

func (s *Selector) lookupByCue(ctx context.Context, cue string) *Entry {
	row, err := s.store.LookupByCue(ctx, cue)
	if err != nil {
		s.logger.Warn("lookup by cue", zap.Error(err), zap.String("cue", cue))
		return nil
	}

	return row
}
