package redis

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// respServer speaks just enough RESP2 for list commands and records every list.
type respServer struct {
	ln    net.Listener
	mu    sync.Mutex
	lists map[string][]string
}

func newRespServer(t *testing.T) *respServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &respServer{ln: ln, lists: map[string][]string{}}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *respServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *respServer) handle(conn net.Conn) {
	defer conn.Close() //nolint:errcheck

	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err = conn.Write([]byte(s.exec(args))); err != nil {
			return
		}
	}
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "*")))
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if _, err = r.ReadString('\n'); err != nil { // $len
			return nil, err
		}
		arg, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		args = append(args, strings.TrimSuffix(arg, "\r\n"))
	}

	return args, nil
}

func (s *respServer) exec(args []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToUpper(args[0]) {
	case "PING":
		return "+PONG\r\n"
	case "RPUSH":
		if len(args) < 3 {
			return "-ERR wrong number of arguments for 'rpush' command\r\n"
		}
		s.lists[args[1]] = append(s.lists[args[1]], args[2:]...)
		return fmt.Sprintf(":%d\r\n", len(s.lists[args[1]]))
	case "LLEN":
		return fmt.Sprintf(":%d\r\n", len(s.lists[args[1]]))
	case "LTRIM":
		start, _ := strconv.Atoi(args[2])
		list := s.lists[args[1]]
		if start < 0 && -start < len(list) {
			s.lists[args[1]] = list[len(list)+start:]
		}
		return "+OK\r\n"
	default:
		return "-ERR unknown command\r\n"
	}
}

func (s *respServer) list(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lists[key]...)
}

func newTestRedis(t *testing.T) (*DB, *respServer) {
	t.Helper()

	srv := newRespServer(t)
	db := NewDB(&redis.Options{
		Addr:            srv.ln.Addr().String(),
		Protocol:        2,
		DisableIdentity: true,
	})
	t.Cleanup(func() { _ = db.Close() })
	return db, srv
}

func TestAddFeedbackPushesJSON(t *testing.T) {
	ctx := context.Background()
	db, srv := newTestRedis(t)

	require.NoError(t, db.Ping(ctx))

	id, err := db.AddFeedback(ctx, "the robot said idk too often", "sess-1", "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	queued := srv.list(KeyFeedbackQueue)
	require.Len(t, queued, 1)

	task := new(FeedbackTask)
	require.NoError(t, json.Unmarshal([]byte(queued[0]), task))
	require.Equal(t, id, task.TaskID)
	require.Equal(t, "the robot said idk too often", task.Content)
	require.Equal(t, "sess-1", task.SessionID)
	require.Equal(t, "10.0.0.1", task.ClientIP)
	require.False(t, task.CreatedAt.IsZero())
}

func TestAddFeedbackKeepsQueuedEntries(t *testing.T) {
	ctx := context.Background()
	db, srv := newTestRedis(t)

	const n = 300
	for i := 0; i < n; i++ {
		_, err := db.AddFeedback(ctx, fmt.Sprintf("feedback %d", i), "", "")
		require.NoError(t, err)
	}

	queued := srv.list(KeyFeedbackQueue)
	require.Len(t, queued, n)

	first := new(FeedbackTask)
	require.NoError(t, json.Unmarshal([]byte(queued[0]), first))
	require.Equal(t, "feedback 0", first.Content)
}
