package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/go-chi/chi/v5"
)

type authResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
}

type recordResponse struct {
	ID          int64  `json:"id"`
	Website     string `json:"website"`
	Username    string `json:"username"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (u *user) response() userResponse {
	return userResponse{ID: u.id, Username: u.username, Email: u.email, FirstName: u.firstName, LastName: u.lastName, Role: u.role}
}

func (r *record) response() recordResponse {
	return recordResponse{ID: r.id, Website: r.website, Username: r.username, Value: r.value,
		Description: r.description, CreatedAt: r.createdAt, UpdatedAt: r.updatedAt}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmailLocked(req.Email) != nil {
		writeMessage(w, http.StatusBadRequest, "Email is already registered")
		return
	}

	u := s.addUserLocked(&user{username: req.Username, email: req.Email, password: req.Password,
		firstName: req.FirstName, lastName: req.LastName, role: "USER"})
	writeJSON(w, http.StatusOK, authResponse{ID: u.id, Username: u.username, Email: u.email,
		Token: s.mintLocked(idString(u.id), u.email), Role: u.role})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByEmailLocked(req.Email)
	if u == nil || u.password != req.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{ID: u.id, Username: u.username, Email: u.email,
		Token: s.mintLocked(idString(u.id), u.email), Role: u.role})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	owner, _ := pathID(r, "userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []recordResponse{}
	for _, rec := range s.records {
		if rec.owner == owner {
			out = append(out, rec.response())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) ownedRecordLocked(r *http.Request) *record {
	owner, _ := pathID(r, "userID")
	id, ok := pathID(r, "id")
	if !ok {
		return nil
	}
	rec := s.records[id]
	if rec == nil || rec.owner != owner {
		return nil
	}
	return rec
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (models.PasswordRecord, bool) {
	var in models.PasswordRecord
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return in, false
	}
	if err := in.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, "Website, username and password value are required")
		return in, false
	}
	return in, true
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ownedRecordLocked(r)
	if rec == nil {
		writeMessage(w, http.StatusNotFound, "Password not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.response())
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	owner, _ := pathID(r, "userID")

	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &record{owner: owner, website: in.Website, username: in.Username, value: in.Value, description: in.Description}
	s.addRecordLocked(rec)
	writeJSON(w, http.StatusCreated, rec.response())
}

// handleUpdateRecord replaces every field, as the real service does.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec := s.ownedRecordLocked(r)
	s.mu.Unlock()
	if rec == nil {
		writeMessage(w, http.StatusNotFound, "Password not found")
		return
	}

	in, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.website, rec.username, rec.value, rec.description = in.Website, in.Username, in.Value, in.Description
	rec.updatedAt = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, rec.response())
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.ownedRecordLocked(r)
	if rec == nil {
		writeMessage(w, http.StatusNotFound, "Password not found")
		return
	}
	delete(s.records, rec.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []userResponse{}
	for _, u := range s.sortedUsersLocked() {
		out = append(out, u.response())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u.response())
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Username == "" {
		writeMessage(w, http.StatusBadRequest, "Username and email are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userByEmailLocked(in.Email) != nil {
		writeMessage(w, http.StatusBadRequest, "Email is already registered")
		return
	}
	role := in.Role
	if role == "" {
		role = "USER"
	}
	u := s.addUserLocked(&user{username: in.Username, email: in.Email, password: in.Password,
		firstName: in.FirstName, lastName: in.LastName, role: role})
	writeJSON(w, http.StatusCreated, u.response())
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	var in models.User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	u.username, u.email, u.firstName, u.lastName = in.Username, in.Email, in.FirstName, in.LastName
	if in.Password != "" {
		u.password = in.Password
	}
	if in.Role != "" {
		u.role = in.Role
	}
	writeJSON(w, http.StatusOK, u.response())
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[id] == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	w.WriteHeader(http.StatusNoContent)
}
