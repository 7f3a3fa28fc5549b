package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/log"
)

type fakeCounter struct {
	n   int64
	err error
}

func (c *fakeCounter) Count(context.Context) (int64, error) {
	return c.n, c.err
}

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(context.Context) error {
	return p.err
}

// memSessions round-trips sessions through JSON like the real stores do.
type memSessions struct {
	mu   sync.Mutex
	data map[string][]byte
	// afterLoad runs after every Load, outside the lock
	afterLoad func()
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[string][]byte{}}
}

func (m *memSessions) Save(_ context.Context, sess *model.Session, _ time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sess.ID] = payload
	return nil
}

func (m *memSessions) Advance(_ context.Context, sess *model.Session, fromRound int, _ time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := new(model.Session)
	if err = json.Unmarshal(m.data[sess.ID], stored); err != nil {
		return err
	}
	if stored.Round != fromRound {
		return errors.WithStack(model.ErrRoundConflict)
	}
	m.data[sess.ID] = payload
	return nil
}

func (m *memSessions) Load(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	payload, ok := m.data[id]
	m.mu.Unlock()
	if m.afterLoad != nil {
		m.afterLoad()
	}

	if !ok {
		return nil, errors.WithStack(model.ErrSessionNotFound)
	}
	sess := new(model.Session)
	return sess, json.Unmarshal(payload, sess)
}

type fakeSink struct {
	got []*model.Feedback
	err error
}

func (s *fakeSink) Submit(_ context.Context, fb *model.Feedback) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.got = append(s.got, fb)
	return "fb-1", nil
}

type testEnv struct {
	svc      *Service
	counter  *fakeCounter
	sessions *memSessions
	sink     *fakeSink
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := assoc.NewMemoryStore(
		assoc.Entry{Cue: "dog", Assoc1: "bone", Assoc2: "leash"},
		assoc.Entry{Cue: "cat", Assoc1: "mouse", Assoc2: "purr"},
	)
	sel, err := assoc.NewSelector(store, assoc.WithLogger(log.Logger))
	require.NoError(t, err)

	env := &testEnv{
		counter:  &fakeCounter{n: 2},
		sessions: newMemSessions(),
		sink:     &fakeSink{},
	}
	env.svc, err = NewService(Deps{
		Counter:   env.counter,
		Generator: assoc.NewGenerator(sel),
		Sessions:  env.sessions,
		Feedback:  env.sink,
	}, Settings{PTwoHop: 0}, log.Logger, func() time.Time { return testNow })
	require.NoError(t, err)

	return env
}

func repeatWord(word string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = word
	}
	return out
}

func requireIssue(t *testing.T, err error, path string) {
	t.Helper()

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "expect validation error, got %v", err)
	for _, is := range verr.Issues {
		if is.Path == path {
			return
		}
	}
	require.Failf(t, "missing issue", "no issue for %q in %+v", path, verr.Issues)
}
