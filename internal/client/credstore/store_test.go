package credstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) (Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return New(metadata.NewSQLiteRepository(db)), db
}

func TestStore_EmptySlot(t *testing.T) {
	s, _ := setupStore(t)

	tok, err := s.Token(context.Background())
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestStore_SaveTokenClear(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "T1"))

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "T1", tok)

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, common.CredentialKey).Scan(&raw))
	require.Equal(t, []byte("T1"), raw, "credential lives under the fixed key")

	require.NoError(t, s.Save(ctx, "T2"))
	tok, _ = s.Token(ctx)
	require.Equal(t, "T2", tok, "there is only one slot")

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing an empty slot is fine")
	tok, _ = s.Token(ctx)
	require.Empty(t, tok)
}

func TestStore_SaveRejectsEmpty(t *testing.T) {
	s, _ := setupStore(t)
	require.ErrorIs(t, s.Save(context.Background(), ""), ErrEmptyCredential)
}

func TestStore_ClearIf(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "new"))

	ok, err := s.ClearIf(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok)
	tok, _ := s.Token(ctx)
	require.Equal(t, "new", tok)

	ok, err = s.ClearIf(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.ClearIf(ctx, "new")
	require.NoError(t, err)
	require.True(t, ok)
	tok, _ = s.Token(ctx)
	require.Empty(t, tok)
}

type brokenRepo struct{ err error }

func (b brokenRepo) Get(context.Context, string) ([]byte, error) { return nil, b.err }
func (b brokenRepo) Set(context.Context, string, []byte) error   { return b.err }
func (b brokenRepo) Delete(context.Context, string) error        { return b.err }
func (b brokenRepo) DeleteIfEqual(context.Context, string, []byte) (bool, error) {
	return false, b.err
}

func TestStore_WrapsRepositoryErrors(t *testing.T) {
	boom := errors.New("disk gone")
	s := New(brokenRepo{err: boom})
	ctx := context.Background()

	_, err := s.Token(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.Save(ctx, "x"), boom)
	require.ErrorIs(t, s.Clear(ctx), boom)
	_, err = s.ClearIf(ctx, "x")
	require.ErrorIs(t, err, boom)
}
