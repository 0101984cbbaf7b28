package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/store"
	"github.com/dmitrijs2005/passclient/internal/testkit/fakeapi"
	"github.com/stretchr/testify/require"
)

// ---- end-to-end environment ----

type testEnv struct {
	srv     *fakeapi.Server
	api     *client.HTTPClient
	store   *store.Store
	session *SessionManager
	records RecordService
	users   UserService
}

func newTestEnv(t *testing.T, opts ...SessionOption) *testEnv {
	t.Helper()
	ctx := context.Background()

	srv := fakeapi.New(t)
	api := client.NewHTTPClient(srv.URL, srv.URL, client.WithTimeout(5*time.Second))

	db, err := store.OpenDB(ctx, filepath.Join(t.TempDir(), "passcli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := store.New(ctx, db, nil)
	require.NoError(t, err)

	sm := NewSessionManager(api, st, opts...)
	return &testEnv{
		srv:     srv,
		api:     api,
		store:   st,
		session: sm,
		records: NewRecordService(api, sm),
		users:   NewUserService(api, sm, sm),
	}
}

func (e *testEnv) login(t *testing.T) models.Session {
	t.Helper()
	e.srv.SeedUser("a", "a@b.com", "pw")
	sess, err := e.session.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	return sess
}

func (e *testEnv) stored(t *testing.T) (store.Credentials, bool) {
	t.Helper()
	c, ok, err := e.store.Read(context.Background())
	require.NoError(t, err)
	return c, ok
}

// ---- fakes ----

type fakeAuthAPI struct {
	mu sync.Mutex

	loginResp    models.AuthResponse
	loginErr     error
	registerResp models.AuthResponse
	registerErr  error
	delay        time.Duration

	calls    int
	inFlight int32
	maxSeen  int32
}

func (f *fakeAuthAPI) enter() {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		m := atomic.LoadInt32(&f.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxSeen, m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	atomic.AddInt32(&f.inFlight, -1)
}

func (f *fakeAuthAPI) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	f.enter()
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	f.enter()
	return f.registerResp, f.registerErr
}

type fakeStore struct {
	mu sync.Mutex

	creds    store.Credentials
	has      bool
	user     models.User
	hasUser  bool
	saveErr  error
	readErr  error
	clearErr error

	onSaveUser func()

	saves  int
	clears int
}

func (f *fakeStore) Save(ctx context.Context, token string, userID models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.creds, f.has = store.Credentials{Token: token, UserID: userID}, true
	return nil
}

func (f *fakeStore) Read(ctx context.Context) (store.Credentials, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds, f.has, f.readErr
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.creds, f.has = store.Credentials{}, false
	f.user, f.hasUser = models.User{}, false
	return nil
}

func (f *fakeStore) SaveUser(ctx context.Context, u models.User) error {
	if f.onSaveUser != nil {
		f.onSaveUser()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user, f.hasUser = u, true
	return nil
}

func (f *fakeStore) ReadUser(ctx context.Context) (models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.hasUser, nil
}

type fakeSession struct {
	sess        models.Session
	ok          bool
	invalidated []string
}

func (f *fakeSession) Session() (models.Session, bool) { return f.sess, f.ok }

func (f *fakeSession) Invalidate(ctx context.Context, token string) bool {
	f.invalidated = append(f.invalidated, token)
	return true
}

var errBoom = errors.New("boom")
