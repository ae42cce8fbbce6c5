package usecase

import (
	"context"
	"fmt"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/password"
	"github.com/fleetadmin/fleet-api/internal/repository"
	"github.com/fleetadmin/fleet-api/internal/sanitize"
)

// tokenIssuer is the subset of the token service Login needs.
type tokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthUsecase struct {
	users  repository.UserRepository
	tokens tokenIssuer
}

func NewAuthUsecase(users repository.UserRepository, tokens tokenIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens}
}

// Signup registers a new admin account. The password is generated
// server-side and queued for out-of-band email delivery; it is never
// returned to the caller, persisted in plaintext outside the outbox
// body, or logged. The user row and the queued email are written
// atomically, so a failed signup leaves no account behind, and
// delivery happens asynchronously so a slow mail provider cannot
// stall the request.
func (u *AuthUsecase) Signup(ctx context.Context, emailAddr string) error {
	emailAddr = sanitize.Email(emailAddr)

	plaintext, err := password.Generate()
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	subject := "Your fleet admin account"
	body := fmt.Sprintf("Your login password is: %s", plaintext)
	if _, err := u.users.CreateWithOutboxEmail(ctx, emailAddr, hash, subject, body); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login verifies credentials and returns a signed session token.
// bcrypt's hash comparison is constant-time.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plaintext string) (string, error) {
	emailAddr = sanitize.Email(emailAddr)

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if !password.Compare(plaintext, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}
