package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// ErrInvalidCredentials is the single error returned for every failed
// authentication: unknown username, missing stored hash, and password
// mismatch are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameTaken is returned when registration hits the unique username index.
var ErrUsernameTaken = errors.New("username already taken")

const uniqueViolationCode = "23505"

// AuthService coordinates credential verification, token issuance, and
// account registration/password changes.
type AuthService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	dummyHash  string
}

// NewAuthService builds the service. A throwaway hash is precomputed so the
// unknown-username path can burn a bcrypt compare and cost about the same as
// a password mismatch.
func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenManager, dispatcher events.Dispatcher) *AuthService {
	dummyHash, _ := hasher.Hash(context.Background(), uuid.NewString())
	return &AuthService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		dispatcher: dispatcher,
		dummyHash:  dummyHash,
	}
}

// Authenticate verifies a username/password pair and returns the matching
// user. Lookup failures of any kind degrade into ErrInvalidCredentials;
// nothing about why verification failed leaks to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == nil {
		// Account has no password set; it can never authenticate this way.
		s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(ctx, password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a signed bearer token for the user.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.publish(ctx, events.Event{Type: events.EventTypeLoginFailed})
		return "", err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTypeLoginSucceeded,
		UserID:   user.ID,
		Username: user.Username,
	})
	return token, nil
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: &hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTypeUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ErrInvalidCredentials
	}
	if user.PasswordHash == nil || !s.hasher.Verify(ctx, currentPassword, *user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTypePasswordChanged,
		UserID:   user.ID,
		Username: user.Username,
	})
	return nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.OccurredAt = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
