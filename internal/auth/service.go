// Package auth issues and verifies identity tokens and orchestrates
// signup, login, and password-reset flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"budgetbuddy/internal/mail"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/storage"
)

var (
	// ErrMissingFields indicates a signup request with an empty field.
	ErrMissingFields = errors.New("username, email, and password are required")
	// ErrPasswordRequired indicates a reset request without a new password.
	ErrPasswordRequired = errors.New("password is required")
	// ErrInvalidCredentials indicates the password did not verify.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrResetInvalid covers every way a reset token can be refused:
	// bad signature, expired, already used, or never issued.
	ErrResetInvalid = errors.New("invalid or expired token")
)

// Service orchestrates credential storage, token issuance, hashing, and
// reset-mail delivery.
type Service struct {
	users        storage.UserStore
	tokens       *TokenManager
	hasher       *PasswordHasher
	mailer       mail.Mailer
	resetBaseURL string
}

// NewService wires an auth service from its collaborators.
func NewService(users storage.UserStore, tokens *TokenManager, hasher *PasswordHasher, mailer mail.Mailer, resetBaseURL string) *Service {
	return &Service{
		users:        users,
		tokens:       tokens,
		hasher:       hasher,
		mailer:       mailer,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
	}
}

// Signup registers a new user and returns a fresh session token with the
// public user view. Duplicate username or email surfaces as
// storage.ErrAlreadyExists.
func (s *Service) Signup(ctx context.Context, username, email, password string) (string, models.PublicUser, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", models.PublicUser{}, ErrMissingFields
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return "", models.PublicUser{}, err
	}

	token, err := s.tokens.IssueSession(created)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("issue session: %w", err)
	}
	return token, created.Public(), nil
}

// Login verifies a username/password pair and returns a session token with
// the public user view. An unknown username surfaces as storage.ErrNotFound
// so the handler can report it distinctly from a bad password.
func (s *Service) Login(ctx context.Context, username, password string) (string, models.PublicUser, error) {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", models.PublicUser{}, err
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(user)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("issue session: %w", err)
	}
	return token, user.Public(), nil
}

// VerifyToken checks a session token and returns the embedded identity.
// Pure signature and expiry check, no storage access.
func (s *Service) VerifyToken(token string) (Identity, error) {
	return s.tokens.VerifySession(token)
}

// InitiateReset mints a reset token, persists it on the user row
// (overwriting any prior outstanding token), and hands the link to the
// mailer. Delivery failures are logged, never surfaced: the ack must not
// reveal whether the mail left the building.
func (s *Service) InitiateReset(ctx context.Context, email string) error {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}

	token, err := s.tokens.IssueReset(user.ID)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("persist reset token: %w", err)
	}

	link := s.resetBaseURL + "/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		log.Printf("auth: reset mail delivery failed for user %d: %v", user.ID, err)
	}
	return nil
}

// CompleteReset consumes a reset token and stores the new password. The
// token must verify cryptographically and match the persisted value
// byte-for-byte; success clears the persisted value, so a replay of the
// same token fails even before it expires.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	userID, err := s.tokens.VerifyReset(token)
	if err != nil {
		return ErrResetInvalid
	}

	user, err := s.users.FindUserByIDAndResetToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrResetInvalid
		}
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}
