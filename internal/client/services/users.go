package services

import (
	"context"

	"github.com/dmitrijs2005/passclient/internal/client/client"
	"github.com/dmitrijs2005/passclient/internal/client/models"
)

// UserService is CRUD over user profiles, with the same session rules as
// RecordService.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id models.ID) (models.User, error)
	Me(ctx context.Context) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id models.ID, u models.User) (models.User, error)
	Delete(ctx context.Context, id models.ID) error
}

// ProfileCache receives fresh copies of the session owner's profile.
type ProfileCache interface {
	UpdateCurrentUser(ctx context.Context, u models.User)
}

type userService struct {
	api     client.UserAPI
	session SessionSource
	cache   ProfileCache
}

// NewUserService returns a UserService. cache may be nil.
func NewUserService(api client.UserAPI, session SessionSource, cache ProfileCache) UserService {
	return &userService{api: api, session: session, cache: cache}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx, sess.Token)
	if err != nil {
		return nil, expire(ctx, s.session, sess, err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id models.ID) (models.User, error) {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return models.User{}, err
	}
	if err := requireID(id); err != nil {
		return models.User{}, err
	}
	u, err := s.api.GetUser(ctx, sess.Token, id)
	if err != nil {
		return models.User{}, expire(ctx, s.session, sess, err)
	}
	s.remember(ctx, sess, u)
	return u, nil
}

// Me fetches the profile of the session owner.
func (s *userService) Me(ctx context.Context) (models.User, error) {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return models.User{}, err
	}
	return s.Get(ctx, sess.UserID)
}

func (s *userService) Create(ctx context.Context, u models.User) (models.User, error) {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return models.User{}, err
	}
	if u.Username == "" || u.Email == "" {
		return models.User{}, client.NewError(client.KindInvalidRequest, "Username and email are required")
	}
	created, err := s.api.CreateUser(ctx, sess.Token, u)
	if err != nil {
		return models.User{}, expire(ctx, s.session, sess, err)
	}
	return created, nil
}

func (s *userService) Update(ctx context.Context, id models.ID, u models.User) (models.User, error) {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return models.User{}, err
	}
	if err := requireID(id); err != nil {
		return models.User{}, err
	}
	updated, err := s.api.UpdateUser(ctx, sess.Token, id, u)
	if err != nil {
		return models.User{}, expire(ctx, s.session, sess, err)
	}
	if updated.ID.IsZero() {
		updated.ID = id
	}
	s.remember(ctx, sess, updated)
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id models.ID) error {
	sess, _, err := authorize(s.session, "")
	if err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.api.DeleteUser(ctx, sess.Token, id); err != nil {
		return expire(ctx, s.session, sess, err)
	}
	return nil
}

func (s *userService) remember(ctx context.Context, sess models.Session, u models.User) {
	if s.cache != nil && u.ID == sess.UserID {
		s.cache.UpdateCurrentUser(ctx, u)
	}
}
