package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_Me(t *testing.T) {
	e := newTestEnv(t)
	sess := e.login(t)

	me, err := e.users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, me.ID)
	assert.Equal(t, "a@b.com", me.Email)
}

func TestUsers_CRUD(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.login(t)

	bob, err := e.users.Create(ctx, models.User{Username: "bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	bob.LastName = "Builder"
	updated, err := e.users.Update(ctx, bob.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, "Builder", updated.LastName)

	require.NoError(t, e.users.Delete(ctx, bob.ID))
	_, err = e.users.Get(ctx, bob.ID)
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestUsers_UpdateSelfRefreshesCachedProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sess := e.login(t)

	me, err := e.users.Me(ctx)
	require.NoError(t, err)
	me.FirstName = "Alice"
	_, err = e.users.Update(ctx, sess.UserID, me)
	require.NoError(t, err)

	u, ok := e.session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Alice", u.FirstName)
	assert.Equal(t, "Alice", u.DisplayName())
}

func TestUsers_Create_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	_, err := e.users.Create(context.Background(), models.User{Username: "x"})
	require.ErrorIs(t, err, client.ErrInvalidRequest)
}

func TestUsers_EmptyID_FailsBeforeIO(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	ctx := context.Background()
	before := len(e.srv.Requests())

	_, err := e.users.Get(ctx, "")
	require.ErrorIs(t, err, client.ErrInvalidRequest)
	_, err = e.users.Update(ctx, "", models.User{Username: "x", Email: "x@y"})
	require.ErrorIs(t, err, client.ErrInvalidRequest)
	require.ErrorIs(t, e.users.Delete(ctx, ""), client.ErrInvalidRequest)
	assert.Len(t, e.srv.Requests(), before)
}

func TestUsers_NoSession(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.users.Me(context.Background())
	require.ErrorIs(t, err, client.ErrAuthenticationRequired)
	_, err = e.users.List(context.Background())
	require.ErrorIs(t, err, client.ErrAuthenticationRequired)
	assert.Empty(t, e.srv.Requests())
}

func TestUsers_401_Invalidates(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	e.srv.RevokeAll()

	_, err := e.users.List(context.Background())
	require.ErrorIs(t, err, client.ErrSessionExpired)
	assert.False(t, e.session.IsAuthenticated())
}
