// Package jwt provides HS256 token issuing and validation for users.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/runningsport/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// DefaultTokenDuration is the lifetime of an issued token.
const DefaultTokenDuration = 60 * time.Minute

// ErrInvalidToken is returned for tokens that fail signature, algorithm or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Config holds token settings.
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
	// Locale is embedded in every token; it is a BCP 47 tag.
	Locale string
}

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	FirstName string      `json:"firstname"`
	LastName  string      `json:"lastname"`
	BirthDate string      `json:"birthdate"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Locale    string      `json:"locale"`
	Role      domain.Role `json:"role"`
}

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret   []byte
	duration time.Duration
	locale   string
	now      func() time.Time
}

// NewIssuer creates a token issuer. The secret must not be empty and the
// locale must be a valid language tag.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt: secret key is required")
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse locale %q: %w", cfg.Locale, err)
	}

	duration := cfg.TokenDuration
	if duration <= 0 {
		duration = DefaultTokenDuration
	}

	return &Issuer{
		secret:   []byte(cfg.SecretKey),
		duration: duration,
		locale:   tag.String(),
		now:      time.Now,
	}, nil
}

// IssueToken signs a token describing user.
func (i *Issuer) IssueToken(_ context.Context, user *domain.User) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.duration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		FirstName: user.FirstName,
		LastName:  user.LastName,
		BirthDate: user.BirthDate,
		Email:     user.Email,
		Phone:     user.Phone,
		Locale:    i.locale,
		Role:      user.Role,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken verifies the token and returns its claims.
func (i *Issuer) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// ValidateToken verifies the token and returns its subject and role.
func (i *Issuer) ValidateToken(_ context.Context, tokenString string) (string, domain.Role, error) {
	claims, err := i.ParseToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.Subject, claims.Role, nil
}
