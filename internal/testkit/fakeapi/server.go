// Package fakeapi is an in-process stand-in for the password-manager
// backend: the auth service, the password-record service and the user
// service, served by one chi router on an httptest.Server.
//
// Tokens are real HS256 JWTs. Responses use numeric ids, as the real
// services do. Tests can revoke tokens, inject failures and inspect every
// request the client made.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Request is what the server saw of one inbound call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	ContentType   string
}

type fault struct {
	status int
	body   string
}

type user struct {
	id        int64
	username  string
	email     string
	password  string
	firstName string
	lastName  string
	role      string
}

type record struct {
	id          int64
	owner       int64
	website     string
	username    string
	value       string
	description string
	createdAt   string
	updatedAt   string
}

type Server struct {
	*httptest.Server

	secret []byte
	ttl    time.Duration

	mu       sync.Mutex
	nextID   int64
	users    map[int64]*user
	records  map[int64]*record
	issued   []string
	revoked  map[string]bool
	faults   []fault
	delay    time.Duration
	requests []Request
}

// New starts a fake backend and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		secret:  []byte("fakeapi-" + uuid.NewString()),
		ttl:     time.Hour,
		users:   map[int64]*user{},
		records: map[int64]*record{},
		revoked: map[string]bool{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.inject)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Route("/api/passwords/user/{userID}", func(r chi.Router) {
			r.Use(s.requireOwner)
			r.Get("/", s.handleListRecords)
			r.Post("/", s.handleCreateRecord)
			r.Get("/{id}", s.handleGetRecord)
			r.Put("/{id}", s.handleUpdateRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
	})

	return r
}

// SeedUser creates an account directly and returns its id.
func (s *Server) SeedUser(username, email, password string) models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(&user{username: username, email: email, password: password, role: "USER"})
	return idString(u.id)
}

// SeedRecord stores a record for owner directly and returns its id.
func (s *Server) SeedRecord(owner models.ID, rec models.PasswordRecord) models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ownerID, _ := strconv.ParseInt(owner.String(), 10, 64)
	r := &record{owner: ownerID, website: rec.Website, username: rec.Username, value: rec.Value, description: rec.Description}
	s.addRecordLocked(r)
	return idString(r.id)
}

// RecordCount returns how many records owner has.
func (s *Server) RecordCount(owner models.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if idString(r.owner) == owner {
			n++
		}
	}
	return n
}

// RevokeAll makes every token issued so far fail with 401.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tok := range s.issued {
		s.revoked[tok] = true
	}
}

// Revoke makes token fail with 401.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

// FailNext queues a canned response for the next request that has no
// other fault queued ahead of it.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{status: status, body: body})
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Mint issues a token for the user with the given id and email, as the
// auth service would.
func (s *Server) Mint(id models.ID, email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mintLocked(id, email)
}

func (s *Server) mintLocked(id models.ID, email string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		Audience:  jwt.ClaimStrings{id.String()},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	s.issued = append(s.issued, tok)
	return tok
}

func (s *Server) addUserLocked(u *user) *user {
	s.nextID++
	u.id = s.nextID
	s.users[u.id] = u
	return u
}

func (s *Server) addRecordLocked(r *record) {
	s.nextID++
	r.id = s.nextID
	now := time.Now().UTC().Format(time.RFC3339)
	r.createdAt, r.updatedAt = now, now
	s.records[r.id] = r
}

func (s *Server) userByEmailLocked(email string) *user {
	for _, u := range s.users {
		if u.email == email {
			return u
		}
	}
	return nil
}

func (s *Server) sortedUsersLocked() []*user {
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func idString(id int64) models.ID {
	return models.ID(strconv.FormatInt(id, 10))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
