package assoc

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(
		Entry{Cue: "Dog", Assoc1: "bone", Assoc2: "leash"},
		Entry{Cue: "duck", Letter: "d", Assoc1: "pond", Assoc2: "quack"},
		Entry{Cue: "!!!", Assoc1: "skip", Assoc2: "me"},
	)
	require.Equal(t, 2, s.Len())

	e, err := s.LookupByCue(ctx, "dog")
	require.NoError(t, err)
	require.Equal(t, "d", e.Letter)
	require.Equal(t, "bone", e.Assoc1)

	e, err = s.LookupByCue(ctx, "cat")
	require.NoError(t, err)
	require.Nil(t, e)

	for range 20 {
		e, err = s.LookupRandomByLetter(ctx, "d")
		require.NoError(t, err)
		require.Contains(t, []string{"dog", "duck"}, e.Cue)
	}

	e, err = s.LookupRandomByLetter(ctx, "q")
	require.NoError(t, err)
	require.Nil(t, e)

	// replacing an entry does not leave a stale copy in the letter index
	s.Put(Entry{Cue: "dog", Assoc1: "cat", Assoc2: "bark"})
	require.Equal(t, 2, s.Len())
	for range 20 {
		e, err = s.LookupRandomByLetter(ctx, "d")
		require.NoError(t, err)
		if e.Cue == "dog" {
			require.Equal(t, "cat", e.Assoc1)
		}
	}
}

func TestMemoryStoreConcurrentPutAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(Entry{Cue: "dog", Assoc1: "bone", Assoc2: "leash"})

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := range 100 {
				s.Put(Entry{Cue: fmt.Sprintf("d%d-%d", w, i), Assoc1: "a", Assoc2: "b"})
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				e, err := s.LookupByCue(ctx, "dog")
				if err != nil || e == nil || e.Assoc1 != "bone" {
					t.Errorf("lookup dog: %v %v", e, err)
					return
				}
				if e, err = s.LookupRandomByLetter(ctx, "d"); err != nil || e == nil {
					t.Errorf("lookup letter d: %v %v", e, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 401, s.Len())
}
