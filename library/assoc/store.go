package assoc

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Entry is one row of the association table.
type Entry struct {
	Cue    string `json:"cue"`
	Letter string `json:"letter"`
	Assoc1 string `json:"assoc1"`
	Assoc2 string `json:"assoc2"`
}

// Words returns both associated words.
func (e *Entry) Words() [2]string {
	return [2]string{e.Assoc1, e.Assoc2}
}

// Store is the read-only lookup capability the engine consumes.
//
// Both methods return (nil, nil) when nothing matches.
type Store interface {
	// LookupByCue returns the entry whose cue equals the normalized cue.
	LookupByCue(ctx context.Context, cue string) (*Entry, error)
	// LookupRandomByLetter returns a uniformly random entry for letter.
	LookupRandomByLetter(ctx context.Context, letter string) (*Entry, error)
}

var _ Store = new(MemoryStore)

// MemoryStore is an in-memory association table, safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	byCue    map[string]Entry
	byLetter map[string][]Entry
}

// NewMemoryStore indexes entries by normalized cue and by letter.
// An entry without a letter gets the first character of its cue.
// Later entries replace earlier ones with the same cue.
func NewMemoryStore(entries ...Entry) *MemoryStore {
	s := &MemoryStore{
		byCue:    make(map[string]Entry, len(entries)),
		byLetter: make(map[string][]Entry),
	}
	for _, e := range entries {
		s.Put(e)
	}

	return s
}

// Put adds or replaces one entry.
func (s *MemoryStore) Put(e Entry) {
	e.Cue = Normalize(e.Cue)
	if e.Cue == "" {
		return
	}
	if e.Letter == "" {
		e.Letter = firstChar(e.Cue)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byCue[e.Cue]; ok {
		rows := s.byLetter[old.Letter]
		for i := range rows {
			if rows[i].Cue == e.Cue {
				s.byLetter[old.Letter] = append(rows[:i:i], rows[i+1:]...)
				break
			}
		}
	}

	s.byCue[e.Cue] = e
	s.byLetter[e.Letter] = append(s.byLetter[e.Letter], e)
}

// Len returns the number of entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byCue)
}

// LookupByCue implements Store.
func (s *MemoryStore) LookupByCue(_ context.Context, cue string) (*Entry, error) {
	s.mu.RLock()
	e, ok := s.byCue[cue]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	return &e, nil
}

// LookupRandomByLetter implements Store.
func (s *MemoryStore) LookupRandomByLetter(_ context.Context, letter string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.byLetter[letter]
	if len(rows) == 0 {
		return nil, nil
	}

	e := rows[rand.IntN(len(rows))]
	return &e, nil
}
