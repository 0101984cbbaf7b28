package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/passclient/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passcli.db")
	db, err := OpenDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func newTestStore(t *testing.T, passphrase []byte) *Store {
	t.Helper()
	db, _ := openTestDB(t)
	s, err := New(context.Background(), db, passphrase)
	require.NoError(t, err)
	return s
}

func TestOpenDB_CreatesMetadataTable(t *testing.T) {
	db, _ := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='metadata'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "metadata", name)
}

func TestOpenDB_IsIdempotent(t *testing.T) {
	_, path := openTestDB(t)

	db2, err := OpenDB(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}

func TestRead_EmptyStore(t *testing.T) {
	s := newTestStore(t, nil)

	_, ok, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveRead_RoundTrip(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok-1", "42"))

	c, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Credentials{Token: "tok-1", UserID: "42"}, c)
}

func TestSave_RejectsHalfPair(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.Error(t, s.Save(ctx, "", "42"))
	require.Error(t, s.Save(ctx, "tok", ""))

	_, ok, err := s.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSave_OverwritesPrevious(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok-1", "1"))
	require.NoError(t, s.Save(ctx, "tok-2", "2"))

	c, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Credentials{Token: "tok-2", UserID: "2"}, c)
}

func TestRead_HalfPairIsAbsent(t *testing.T) {
	db, _ := openTestDB(t)
	s, err := New(context.Background(), db, nil)
	require.NoError(t, err)

	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), common.MetadataKeyToken, []byte("orphan")))

	_, ok, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear_RemovesEverything(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "tok", "7"))
	require.NoError(t, s.SaveUser(ctx, models.User{ID: "7", Username: "ann"}))
	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.ReadUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear_EmptyStoreIsNoop(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.Clear(context.Background()))
}

func TestSaveUser_DropsPassword(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, models.User{ID: "1", Username: "ann", Email: "a@x", Password: "pw"}))

	u, ok, err := s.ReadUser(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.User{ID: "1", Username: "ann", Email: "a@x"}, u)
}

func TestSealed_TokenNotStoredInPlaintext(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	s, err := New(ctx, db, []byte("local-key"))
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "secret-token", "5"))

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, common.MetadataKeyToken)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	c, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret-token", c.Token)
}

func TestSealed_ReopenWithSameKey(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	s1, err := New(ctx, db, []byte("k"))
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, "tok", "9"))

	s2, err := New(ctx, db, []byte("k"))
	require.NoError(t, err)
	c, ok, err := s2.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", c.Token)
}

func TestSealed_WrongKey(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()

	s1, err := New(ctx, db, []byte("right"))
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, "tok", "9"))

	s2, err := New(ctx, db, []byte("wrong"))
	require.NoError(t, err)
	_, ok, err := s2.Read(ctx)
	require.ErrorIs(t, err, ErrUnreadableToken)
	assert.False(t, ok)
}

func TestConcurrentSaveRead_NeverHalfPair(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "tok-a", "a"))

	pairs := map[string]models.ID{"tok-a": "a", "tok-b": "b"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			tok := "tok-a"
			if i%2 == 1 {
				tok = "tok-b"
			}
			_ = s.Save(ctx, tok, pairs[tok])
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			c, ok, err := s.Read(ctx)
			if err != nil || !ok {
				continue
			}
			assert.Equal(t, pairs[c.Token], c.UserID)
		}
	}()
	wg.Wait()
}
