// Package token issues and verifies the signed session tokens that
// prove a prior successful login. Tokens are stateless: nothing is
// persisted server-side, and a token cannot be revoked before expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = time.Hour

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
}

// NewServiceWithClock is used by tests to control the clock.
func NewServiceWithClock(secret []byte, ttl time.Duration, now func() time.Time) *Service {
	return &Service{secret: secret, ttl: ttl, now: now}
}

// Issue signs a token encoding userID with an expiry one TTL from now.
func (s *Service) Issue(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user ID.
// Failures are classified: ErrTokenMalformed when the token cannot be
// parsed or signature-checked, ErrTokenExpired when past its expiry,
// ErrTokenInvalid for anything else.
func (s *Service) Verify(raw string) (string, error) {
	t, err := jwt.Parse(raw,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenMalformed
	}
	if !t.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", domain.ErrTokenInvalid
	}
	return userID, nil
}
