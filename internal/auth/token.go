// Package auth is the access gate: it maps a bearer credential to a
// resolved user identity.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
)

// ErrInvalidToken is returned for every resolution failure: malformed
// tokens, unknown identities and deactivated accounts all look the same to
// the caller.
var ErrInvalidToken = apperr.Auth("invalid authentication credentials")

// TokenStrategy issues tokens at login and resolves them on each request.
// Strategies are interchangeable behind this interface so the identity-token
// placeholder can be swapped for signed tokens without touching transport.
type TokenStrategy interface {
	Issue(user models.User) (string, error)
	Resolve(ctx context.Context, token string) (models.User, error)
}

// IdentityStrategy preserves the legacy contract where the token is
// literally the user's numeric id rendered as a string. It carries no
// cryptographic binding and exists only for compatibility; run the signed
// strategy anywhere that matters.
type IdentityStrategy struct {
	users store.UserStore
}

// NewIdentityStrategy creates the identity-token strategy.
func NewIdentityStrategy(users store.UserStore) *IdentityStrategy {
	return &IdentityStrategy{users: users}
}

func (s *IdentityStrategy) Issue(user models.User) (string, error) {
	return strconv.FormatInt(user.ID, 10), nil
}

func (s *IdentityStrategy) Resolve(ctx context.Context, token string) (models.User, error) {
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}
	return resolveActiveUser(ctx, s.users, id)
}

// Claims defines the JWT claims structure for the signed strategy.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SignedStrategy issues HS256-signed, expiring tokens. This is the hardened
// replacement for the identity strategy.
type SignedStrategy struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
}

// NewSignedStrategy creates the signed-token strategy.
func NewSignedStrategy(users store.UserStore, secret []byte, ttl time.Duration) *SignedStrategy {
	return &SignedStrategy{users: users, secret: secret, ttl: ttl}
}

func (s *SignedStrategy) Issue(user models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SignedStrategy) Resolve(ctx context.Context, tokenStr string) (models.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, ErrInvalidToken
	}
	return resolveActiveUser(ctx, s.users, claims.UserID)
}

// resolveActiveUser loads the identity behind a token and requires it to be
// active. Storage failures stay storage failures; everything else collapses
// to ErrInvalidToken.
func resolveActiveUser(ctx context.Context, users store.UserStore, id int64) (models.User, error) {
	user, err := users.GetUserByID(ctx, id)
	if err != nil {
		if apperr.IsStorage(err) {
			return models.User{}, err
		}
		return models.User{}, ErrInvalidToken
	}
	if !user.IsActive {
		return models.User{}, ErrInvalidToken
	}
	user.PasswordHash = ""
	return user, nil
}
