// Package users provides the user record lifecycle and credential exchange.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/runningsport/internal/domain"
	"github.com/bissquit/runningsport/internal/pkg/ctxlog"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer issues signed tokens for authenticated users.
type TokenIssuer interface {
	IssueToken(ctx context.Context, user *domain.User) (token string, expiresAt time.Time, err error)
}

// Config contains service settings.
type Config struct {
	// PasswordCost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	PasswordCost int
}

// Service implements user business logic.
type Service struct {
	repo         Repository
	tokens       TokenIssuer
	passwordCost int
}

// NewService creates a new users service.
func NewService(repo Repository, tokens TokenIssuer, cfg Config) *Service {
	cost := cfg.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:         repo,
		tokens:       tokens,
		passwordCost: cost,
	}
}

// CreateInput contains data for creating a user.
type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate string
	Phone     string
}

// UpdateInput contains the mutable profile fields. Nil fields keep their value.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Credentials contains data for a credential exchange.
type Credentials struct {
	Email    string
	Password string
}

// ListActive returns all active users.
func (s *Service) ListActive(ctx context.Context) (list []domain.User, err error) {
	defer func() { recordOperation("list", err) }()

	list, err = s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list active users: %w", ErrStore, err)
	}
	for i := range list {
		list[i].Password = ""
	}
	return list, nil
}

// Create registers a new active user with the default role.
func (s *Service) Create(ctx context.Context, input CreateInput) (user *domain.User, err error) {
	defer func() { recordOperation("create", err) }()

	_, err = s.lookup(ctx, input.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrEmailExists, input.Email)
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.passwordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	record := &domain.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		BirthDate: input.BirthDate,
		Phone:     input.Phone,
		Password:  string(hash),
		Status:    true,
		Role:      domain.RoleClient,
	}

	if err = s.repo.Create(ctx, record); err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			return nil, fmt.Errorf("%w: %s", ErrEmailExists, input.Email)
		case errors.Is(err, ErrInvalidInput):
			return nil, err
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrStore, err)
	}

	ctxlog.FromContext(ctx).Info("user created", "user_id", record.ID)

	return s.lookup(ctx, input.Email)
}

// GetByEmail returns the active user with the given email.
func (s *Service) GetByEmail(ctx context.Context, email string) (user *domain.User, err error) {
	defer func() { recordOperation("get", err) }()

	return s.lookup(ctx, email)
}

// UpdateByEmail changes first name, last name and phone of an active user.
func (s *Service) UpdateByEmail(ctx context.Context, email string, input UpdateInput) (user *domain.User, err error) {
	defer func() { recordOperation("update", err) }()

	current, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	patch := domain.ProfilePatch{
		FirstName: current.FirstName,
		LastName:  current.LastName,
		Phone:     current.Phone,
	}
	if input.FirstName != nil {
		patch.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		patch.LastName = *input.LastName
	}
	if input.Phone != nil {
		patch.Phone = *input.Phone
	}

	if err = s.repo.UpdateProfile(ctx, current.ID, patch); err != nil {
		switch {
		case errors.Is(err, ErrNotApplied):
			return nil, fmt.Errorf("%w: %s", ErrNotApplied, email)
		case errors.Is(err, ErrInvalidInput):
			return nil, err
		}
		return nil, fmt.Errorf("%w: update user: %w", ErrStore, err)
	}

	return s.lookup(ctx, email)
}

// DeleteByEmail soft-deletes the active user with the given email.
func (s *Service) DeleteByEmail(ctx context.Context, email string) (err error) {
	defer func() { recordOperation("delete", err) }()

	current, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	if err = s.repo.Deactivate(ctx, current.ID); err != nil {
		if errors.Is(err, ErrNotApplied) {
			return fmt.Errorf("%w: %s", ErrNotApplied, email)
		}
		return fmt.Errorf("%w: deactivate user: %w", ErrStore, err)
	}

	ctxlog.FromContext(ctx).Info("user deactivated", "user_id", current.ID)
	return nil
}

// Authenticate exchanges email and password for a signed token.
// Unknown emails and wrong passwords are both reported as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (result *domain.AuthenticatedUser, err error) {
	defer func() { recordOperation("authenticate", err) }()

	user, err := s.repo.GetActiveByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidInput) {
			recordAuthAttempt(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: get user by email: %w", ErrStore, err)
	}

	if !user.IsActive() || user.Email != creds.Email ||
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)) != nil {
		recordAuthAttempt(false)
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	token, expiresAt, err := s.tokens.IssueToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	recordAuthAttempt(true)

	return &domain.AuthenticatedUser{
		User:      *user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// lookup finds an active user and strips the password hash.
func (s *Service) lookup(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.GetActiveByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		case errors.Is(err, ErrInvalidInput):
			return nil, err
		}
		return nil, fmt.Errorf("%w: get user by email: %w", ErrStore, err)
	}
	user.Password = ""
	return user, nil
}
