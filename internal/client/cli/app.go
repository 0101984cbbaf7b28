package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/config"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/services"
	"github.com/dmitrijs2005/passclient/internal/client/store"
	"github.com/dmitrijs2005/passclient/internal/logging"
)

// App is the composition root of the CLI. It owns the session and the
// services built on it; nothing is global.
type App struct {
	config  *config.Config
	store   *store.Store
	session *services.SessionManager
	records services.RecordService
	users   services.UserService
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	mu     sync.Mutex
	cache  models.Records
	notice string
}

// NewApp opens the local store and builds the services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := store.OpenDB(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	st, err := store.New(ctx, db, []byte(c.StoreKey))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	api := client.NewHTTPClient(c.AuthBaseURL, c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "transport")))

	sm := services.NewSessionManager(api, st,
		services.WithAutoLoginOnRegister(c.AutoLoginOnRegister),
		services.WithSessionLogger(log.With("component", "session")))

	a := newApp(c, st, sm, services.NewRecordService(api, sm), services.NewUserService(api, sm, sm), log,
		bufio.NewReader(os.Stdin), os.Stdout)
	return a, nil
}

func newApp(c *config.Config, st *store.Store, sm *services.SessionManager, rs services.RecordService,
	us services.UserService, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	a := &App{config: c, store: st, session: sm, records: rs, users: us, log: log, reader: r, out: w}
	sm.OnInvalidated(a.onInvalidated)
	return a
}

// Run restores a stored session, if any, and runs the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.store.Close(); err != nil {
			a.log.Warn(ctx, "closing store", "error", err)
		}
	}()

	restored, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if restored {
		u, _ := a.session.CurrentUser()
		a.println(successStyle.Render(fmt.Sprintf("Welcome back, %s.", displayName(u))))
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	if u, ok := a.session.CurrentUser(); ok {
		return displayName(u)
	}
	return "not logged in"
}

// onInvalidated runs when the server rejects the session token.
func (a *App) onInvalidated(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = nil
	a.notice = client.Message(err)
}

// takeNotice returns and clears a pending session notice.
func (a *App) takeNotice() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.notice
	a.notice = ""
	return n, n != ""
}

func (a *App) setCache(rs models.Records) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = rs
}

func (a *App) updateCache(fn func(models.Records) models.Records) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = fn(a.cache)
}

func (a *App) cached(id models.ID) (models.PasswordRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cache.Find(id)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// fail reports err to the user and returns it. Session expiry is reported
// once, by the REPL notice.
func (a *App) fail(ctx context.Context, op string, err error) error {
	a.log.Debug(ctx, "command failed", "op", op, "kind", client.KindOf(err), "error", err)
	if client.KindOf(err) == client.KindSessionExpired {
		return err
	}
	if client.IsTimeout(err) {
		a.println(errorStyle.Render("Error: the server did not answer in time, try again later"))
		return err
	}
	a.println(errorStyle.Render("Error: " + client.Message(err)))
	return err
}

func displayName(u models.User) string {
	if n := u.DisplayName(); n != "" {
		return n
	}
	if u.Email != "" {
		return u.Email
	}
	return "user " + u.ID.String()
}
