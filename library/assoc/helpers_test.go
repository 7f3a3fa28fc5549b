package assoc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// seqRand replays fixed values, then repeats the last one.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	if r.i >= len(r.vals) {
		return r.vals[len(r.vals)-1]
	}
	v := r.vals[r.i]
	r.i++
	return v
}

// errStore fails every lookup.
type errStore struct{ err error }

func (s errStore) LookupByCue(context.Context, string) (*Entry, error) { return nil, s.err }
func (s errStore) LookupRandomByLetter(context.Context, string) (*Entry, error) {
	return nil, s.err
}

func newTestSelector(t *testing.T, store Store, rnd Rand) *Selector {
	t.Helper()
	opts := []Option{}
	if rnd != nil {
		opts = append(opts, WithRand(rnd))
	}
	sel, err := NewSelector(store, opts...)
	require.NoError(t, err)
	return sel
}

// fixedLetterStore answers cue lookups from a MemoryStore and random letter
// lookups from a fixed entry per letter.
type fixedLetterStore struct {
	*MemoryStore
	letters map[string]Entry
}

func (s fixedLetterStore) LookupRandomByLetter(_ context.Context, letter string) (*Entry, error) {
	e, ok := s.letters[letter]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func dogStore() *MemoryStore {
	return NewMemoryStore(Entry{Cue: "dog", Letter: "d", Assoc1: "bone", Assoc2: "leash"})
}
