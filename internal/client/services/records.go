package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
)

// SessionSource is what the record and user services need from the
// Session Manager.
type SessionSource interface {
	Session() (models.Session, bool)
	Invalidate(ctx context.Context, token string) bool
}

// RecordService is CRUD over the password records of one user.
//
// Every call needs a session and fails with client.ErrAuthenticationRequired
// before any I/O when there is none. A 401 from the service ends the session
// whose token the call used and is returned as client.ErrSessionExpired.
// Create, Update and Replace return the record as stored by the server, to be
// folded into local state with models.Records.Upsert.
type RecordService interface {
	List(ctx context.Context, userID models.ID) (models.Records, error)
	Get(ctx context.Context, userID, id models.ID) (models.PasswordRecord, error)
	Create(ctx context.Context, userID models.ID, rec models.PasswordRecord) (models.PasswordRecord, error)
	Update(ctx context.Context, userID, id models.ID, patch models.RecordPatch) (models.PasswordRecord, error)
	Replace(ctx context.Context, userID, id models.ID, rec models.PasswordRecord) (models.PasswordRecord, error)
	Delete(ctx context.Context, userID, id models.ID) error
}

type recordService struct {
	api     client.RecordAPI
	session SessionSource
}

func NewRecordService(api client.RecordAPI, session SessionSource) RecordService {
	return &recordService{api: api, session: session}
}

var errLoginRequired = client.NewError(client.KindAuthenticationRequired, "Please log in first")

// authorize returns the current session. A zero userID means the session
// owner.
func authorize(src SessionSource, userID models.ID) (models.Session, models.ID, error) {
	sess, ok := src.Session()
	if !ok || sess.Token == "" {
		return models.Session{}, "", errLoginRequired
	}
	if userID.IsZero() {
		userID = sess.UserID
	}
	return sess, userID, nil
}

// requireID rejects an empty record or user id before it reaches a URL.
func requireID(id models.ID) error {
	if id.IsZero() {
		return client.NewError(client.KindInvalidRequest, "An id is required")
	}
	return nil
}

// expire runs the invalidation protocol when err is a 401.
func expire(ctx context.Context, src SessionSource, sess models.Session, err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		src.Invalidate(ctx, sess.Token)
	}
	return err
}

func (s *recordService) List(ctx context.Context, userID models.ID) (models.Records, error) {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return nil, err
	}
	recs, err := s.api.ListRecords(ctx, sess.Token, userID)
	if err != nil {
		return nil, expire(ctx, s.session, sess, err)
	}
	return recs, nil
}

func (s *recordService) Get(ctx context.Context, userID, id models.ID) (models.PasswordRecord, error) {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return models.PasswordRecord{}, err
	}
	if err := requireID(id); err != nil {
		return models.PasswordRecord{}, err
	}
	rec, err := s.api.GetRecord(ctx, sess.Token, userID, id)
	if err != nil {
		return models.PasswordRecord{}, expire(ctx, s.session, sess, err)
	}
	return rec, nil
}

func (s *recordService) Create(ctx context.Context, userID models.ID, rec models.PasswordRecord) (models.PasswordRecord, error) {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return models.PasswordRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return models.PasswordRecord{}, &client.Error{Kind: client.KindInvalidRequest, Message: err.Error(), Err: err}
	}

	created, err := s.api.CreateRecord(ctx, sess.Token, userID, rec)
	if err != nil {
		return models.PasswordRecord{}, expire(ctx, s.session, sess, err)
	}
	if created.ID.IsZero() {
		return models.PasswordRecord{}, client.NewError(client.KindServer, "created record has no id")
	}
	return created, nil
}

// Update applies patch over the server's current copy and writes the
// result back, since the service replaces every field on PUT.
func (s *recordService) Update(ctx context.Context, userID, id models.ID, patch models.RecordPatch) (models.PasswordRecord, error) {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return models.PasswordRecord{}, err
	}
	if err := requireID(id); err != nil {
		return models.PasswordRecord{}, err
	}

	current, err := s.api.GetRecord(ctx, sess.Token, userID, id)
	if err != nil {
		return models.PasswordRecord{}, expire(ctx, s.session, sess, fmt.Errorf("load record %s: %w", id, err))
	}
	if patch.Empty() {
		return current, nil
	}

	return s.put(ctx, sess, userID, id, patch.Apply(current))
}

func (s *recordService) Replace(ctx context.Context, userID, id models.ID, rec models.PasswordRecord) (models.PasswordRecord, error) {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return models.PasswordRecord{}, err
	}
	if err := requireID(id); err != nil {
		return models.PasswordRecord{}, err
	}
	return s.put(ctx, sess, userID, id, rec)
}

func (s *recordService) put(ctx context.Context, sess models.Session, userID, id models.ID, rec models.PasswordRecord) (models.PasswordRecord, error) {
	if err := rec.Validate(); err != nil {
		return models.PasswordRecord{}, &client.Error{Kind: client.KindInvalidRequest, Message: err.Error(), Err: err}
	}

	updated, err := s.api.UpdateRecord(ctx, sess.Token, userID, id, rec)
	if err != nil {
		return models.PasswordRecord{}, expire(ctx, s.session, sess, err)
	}
	if updated.ID.IsZero() {
		updated.ID = id
	}
	return updated, nil
}

// Delete removes a record. An unknown id is client.ErrNotFound.
func (s *recordService) Delete(ctx context.Context, userID, id models.ID) error {
	sess, userID, err := authorize(s.session, userID)
	if err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.api.DeleteRecord(ctx, sess.Token, userID, id); err != nil {
		return expire(ctx, s.session, sess, err)
	}
	return nil
}
