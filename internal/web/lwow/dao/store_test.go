package dao

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	errors "github.com/Laisky/errors/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/word-association/library/assoc"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "failed to connect to in-memory db")
	// every pooled connection would get its own empty memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func newTestStore(t *testing.T, entries ...assoc.Entry) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(newTestDB(t))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	if len(entries) > 0 {
		n, err := store.Upsert(context.Background(), entries)
		require.NoError(t, err)
		require.Len(t, entries, n)
	}
	return store
}

func TestNewSQLStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSQLStore(nil)
	require.Error(t, err)

	_, err = NewSQLStore(newTestDB(t), WithTableName("bad name;"))
	require.Error(t, err)

	_, err = NewSQLStore(newTestDB(t), WithTableName("lwow_assoc"))
	require.NoError(t, err)
}

func TestSQLStoreLookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t,
		assoc.Entry{Cue: "Dog", Assoc1: "bone", Assoc2: "leash"},
		assoc.Entry{Cue: "duck", Letter: "d", Assoc1: "pond", Assoc2: "quack"},
		assoc.Entry{Cue: "cat", Assoc1: "mouse", Assoc2: "purr"},
	)

	e, err := store.LookupByCue(ctx, "dog")
	require.NoError(t, err)
	require.Equal(t, &assoc.Entry{Cue: "dog", Letter: "d", Assoc1: "bone", Assoc2: "leash"}, e)

	e, err = store.LookupByCue(ctx, "zebra")
	require.NoError(t, err)
	require.Nil(t, e)

	for range 10 {
		e, err = store.LookupRandomByLetter(ctx, "d")
		require.NoError(t, err)
		require.Contains(t, []string{"dog", "duck"}, e.Cue)
	}

	e, err = store.LookupRandomByLetter(ctx, "z")
	require.NoError(t, err)
	require.Nil(t, e)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
}

func TestSQLStoreUpsertReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, assoc.Entry{Cue: "dog", Assoc1: "bone", Assoc2: "leash"})

	n, err := store.Upsert(ctx, []assoc.Entry{
		{Cue: "DOG-2", Assoc1: "cat", Assoc2: "bark"},
		{Cue: "   ", Assoc1: "skip", Assoc2: "me"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	e, err := store.LookupByCue(ctx, "dog")
	require.NoError(t, err)
	require.Equal(t, "cat", e.Assoc1)
	require.Equal(t, "bark", e.Assoc2)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSQLStoreDrivesSelector(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, assoc.Entry{Cue: "dog", Assoc1: "bone", Assoc2: "leash"})
	sel, err := assoc.NewSelector(store)
	require.NoError(t, err)

	for range 20 {
		got := sel.ChooseResponse(context.Background(), "dog", assoc.UsedSet{}, "", 0)
		require.Contains(t, []string{"bone", "leash"}, got)
	}
}

func TestSQLStoreQueryError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewSQLStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cue, letter, assoc1, assoc2 FROM associations WHERE cue = $1 LIMIT 1`)).
		WithArgs("dog").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM associations`)).
		WillReturnError(errors.New("connection reset"))

	_, err = store.LookupByCue(context.Background(), "dog")
	require.ErrorContains(t, err, "query association")

	_, err = store.Count(context.Background())
	require.ErrorContains(t, err, "count associations")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpsertRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewSQLStore(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO associations`)
	prep.ExpectExec().
		WithArgs("dog", "d", "bone", "leash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("cat", "c", "mouse", "purr").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = store.Upsert(context.Background(), []assoc.Entry{
		{Cue: "dog", Assoc1: "bone", Assoc2: "leash"},
		{Cue: "cat", Assoc1: "mouse", Assoc2: "purr"},
	})
	require.ErrorContains(t, err, "upsert association cat")
	require.NoError(t, mock.ExpectationsWereMet())
}
