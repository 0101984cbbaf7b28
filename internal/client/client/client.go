package client

import (
	"context"

	"github.com/dmitrijs2005/passclient/internal/client/models"
)

// AuthAPI talks to the authentication service. Its calls carry no token.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error)
}

// RecordAPI talks to the password-record service on behalf of userID.
type RecordAPI interface {
	ListRecords(ctx context.Context, token string, userID models.ID) (models.Records, error)
	GetRecord(ctx context.Context, token string, userID, id models.ID) (models.PasswordRecord, error)
	CreateRecord(ctx context.Context, token string, userID models.ID, rec models.PasswordRecord) (models.PasswordRecord, error)
	UpdateRecord(ctx context.Context, token string, userID, id models.ID, rec models.PasswordRecord) (models.PasswordRecord, error)
	DeleteRecord(ctx context.Context, token string, userID, id models.ID) error
}

// UserAPI talks to the user service.
type UserAPI interface {
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	GetUser(ctx context.Context, token string, id models.ID) (models.User, error)
	CreateUser(ctx context.Context, token string, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, token string, id models.ID, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, token string, id models.ID) error
}

type Client interface {
	AuthAPI
	RecordAPI
	UserAPI
}
