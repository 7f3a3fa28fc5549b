package global

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/word-association/internal/web/lwow/service"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/config"
)

func TestSetupWithSqlite(t *testing.T) {
	t.Setenv(config.EnvDBPath, filepath.Join(t.TempDir(), "lwow.sqlite"))
	ctx := context.Background()
	s := LoadSettings()

	SetupDB(ctx, s, false)
	t.Cleanup(CloseDB)
	require.Nil(t, Redis)

	require.NoError(t, Associations.Migrate(ctx))
	_, err := Associations.Upsert(ctx, []assoc.Entry{{Cue: "dog", Assoc1: "bone", Assoc2: "leash"}})
	require.NoError(t, err)

	SetupServices(ctx, s)
	require.Same(t, Associations, LookupStore)
	require.Nil(t, Throttle)

	words := make([]string, assoc.ResponseCount)
	for i := range words {
		words[i] = "dog"
	}
	got, err := LwowSvc.Generate(ctx, &service.GenerateInput{Words: words})
	require.NoError(t, err)
	require.Len(t, got, assoc.ResponseCount)

	sess, err := LwowSvc.StartGame(ctx, &service.StartGameInput{FavoriteLetter: "q"})
	require.NoError(t, err)
	loaded, err := LwowSvc.GetGame(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "Q", loaded.FavoriteLetter)
}

func TestOpenAssocDBUnknownBackend(t *testing.T) {
	_, err := OpenAssocDB(context.Background(), Settings{DBBackend: "oracle"}, true)
	require.ErrorContains(t, err, "unknown db backend")
}
