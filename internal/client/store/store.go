// Package store is the Credential Store: the durable client-side holder of
// the session token, the user id and an optional cached user profile.
//
// Values live in the local SQLite metadata table. Token and user id are
// always written and cleared together inside one transaction, so a reader
// never observes one without the other. There is no expiry. The token is
// stored in plaintext unless the store is opened with a passphrase, in which
// case it is sealed with AES-GCM (see cryptox).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/passclient/internal/common"
	"github.com/dmitrijs2005/passclient/internal/cryptox"
	"github.com/dmitrijs2005/passclient/internal/dbx"
)

var ErrUnreadableToken = errors.New("stored token cannot be decrypted")

// Credentials is what the store persists for a session.
type Credentials struct {
	Token  string
	UserID models.ID
}

type Store struct {
	db  *sql.DB
	key []byte
}

// New returns a Store over an already migrated db. A non-empty passphrase
// enables token sealing; its salt is created on first use and kept in the
// store.
func New(ctx context.Context, db *sql.DB, passphrase []byte) (*Store, error) {
	s := &Store{db: db}
	if len(passphrase) == 0 {
		return s, nil
	}

	repo := metadata.NewSQLiteRepository(db)
	salt, err := repo.Get(ctx, common.MetadataKeyStoreSalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = cryptox.NewSalt()
		if err := repo.Set(ctx, common.MetadataKeyStoreSalt, salt); err != nil {
			return nil, err
		}
	}

	s.key = cryptox.DeriveMasterKey(passphrase, salt)
	return s, nil
}

// Save persists token and userID atomically.
func (s *Store) Save(ctx context.Context, token string, userID models.ID) error {
	if token == "" || userID.IsZero() {
		return fmt.Errorf("save credentials: token and user id are required")
	}

	value, err := s.seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			common.MetadataKeyToken:  value,
			common.MetadataKeyUserID: []byte(userID),
		})
	})
}

// Read returns the persisted credentials. ok is false when either half is
// missing. Both keys come from a single SELECT, so a concurrent Save or
// Clear is seen entirely or not at all.
func (s *Store) Read(ctx context.Context) (Credentials, bool, error) {
	vals, err := metadata.NewSQLiteRepository(s.db).GetMany(ctx, common.MetadataKeyToken, common.MetadataKeyUserID)
	if err != nil {
		return Credentials{}, false, err
	}
	token, userID := vals[common.MetadataKeyToken], vals[common.MetadataKeyUserID]
	if len(token) == 0 || len(userID) == 0 {
		return Credentials{}, false, nil
	}

	plain, err := s.open(token)
	if err != nil {
		return Credentials{}, false, fmt.Errorf("%w: %v", ErrUnreadableToken, err)
	}

	return Credentials{Token: string(plain), UserID: models.ID(userID)}, true, nil
}

// Clear removes token, user id and the cached profile in one statement.
func (s *Store) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx,
		common.MetadataKeyToken, common.MetadataKeyUserID, common.MetadataKeyUser)
}

// SaveUser caches the profile of the session owner as JSON.
func (s *Store) SaveUser(ctx context.Context, u models.User) error {
	u.Password = ""
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return metadata.NewSQLiteRepository(s.db).Set(ctx, common.MetadataKeyUser, b)
}

// ReadUser returns the cached profile, if any.
func (s *Store) ReadUser(ctx context.Context) (models.User, bool, error) {
	b, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.MetadataKeyUser)
	if err != nil {
		return models.User{}, false, err
	}
	if b == nil {
		return models.User{}, false, nil
	}

	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return models.User{}, false, fmt.Errorf("decode cached user: %w", err)
	}
	return u, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seal(b []byte) ([]byte, error) {
	if s.key == nil {
		return b, nil
	}
	return cryptox.Seal(b, s.key)
}

func (s *Store) open(b []byte) ([]byte, error) {
	if s.key == nil {
		return b, nil
	}
	return cryptox.Open(b, s.key)
}
