// Package services contains server-side business logic: the identity
// directory, reviews and comments. Callers pass the authenticated principal
// explicitly to every operation that mutates owned data.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/reviewhub/internal/common"
	"github.com/dmitrijs2005/reviewhub/internal/dbx"
	"github.com/dmitrijs2005/reviewhub/internal/server/access"
	"github.com/dmitrijs2005/reviewhub/internal/server/auth"
	"github.com/dmitrijs2005/reviewhub/internal/server/credentials"
	"github.com/dmitrijs2005/reviewhub/internal/server/models"
	"github.com/dmitrijs2005/reviewhub/internal/server/repositories/repomanager"
)

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserService is the identity directory: registration, login and lookups.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials *credentials.Store
	tokens      *auth.TokenService
	tokenTTL    time.Duration

	// Verified against on unknown usernames so both login failures cost
	// one key derivation.
	dummyDigest []byte
	dummySalt   []byte
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, creds *credentials.Store,
	tokens *auth.TokenService, tokenTTL time.Duration) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		credentials: creds,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		dummyDigest: make([]byte, credentials.DefaultParams.KeyLen),
		dummySalt:   make([]byte, credentials.SaltSize),
	}
}

// Register validates the input, hashes the password and stores the user.
// Duplicate usernames or emails fail with common.ErrConflict, including when
// two registrations race.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	digest, salt, err := s.credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{UserName: username, Email: email, PasswordHash: digest, PasswordSalt: salt}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// Login checks the password and issues a session token. An unknown username
// and a wrong password both yield common.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	if password == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = s.credentials.Verify(password, s.dummyDigest, s.dummySalt)
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.credentials.Verify(password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(auth.Principal{UserID: user.ID, Admin: user.IsAdmin}, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByUsername(ctx, username)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, common.ErrNotFound
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Delete removes account id and, through cascading keys, everything it owns.
// Only the account itself or an admin may do this.
func (s *UserService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if !validID(id) {
		return common.ErrNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Authorize(p, user.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}
