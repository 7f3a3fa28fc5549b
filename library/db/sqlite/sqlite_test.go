package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "lwow.sqlite")

	_, err := NewDB(ctx, path, true)
	require.Error(t, err, "read-only open must require an existing file")

	db, err := NewDB(ctx, path, false)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(ctx, path, true)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
	require.Error(t, err, "read-only connection must reject writes")
}

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	require.Equal(t, "file:/a/b.sqlite?_busy_timeout=5000&mode=ro", BuildDSN("/a/b.sqlite", true))
	require.Equal(t, "file:x.sqlite?_busy_timeout=5000&mode=rwc", BuildDSN("x.sqlite", false))
}
