package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourname/sleepcycle/internal"
)

// SessionVerifier is the part of the session service the middleware needs.
type SessionVerifier interface {
	Verify(token string) (*internal.SessionClaims, error)
}

// SessionService issues and verifies the signed claims payload that proves a
// user's identity for a bounded window. It is transport-agnostic; the HTTP
// layer decides that the token rides in an HTTP-only cookie.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl}
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *SessionService) Issue(userID, username string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionService) Verify(tokenString string) (*internal.SessionClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired session token", internal.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.Username == "" {
		return nil, fmt.Errorf("%w: session token missing identity claims", internal.ErrUnauthorized)
	}
	return &internal.SessionClaims{UserID: claims.Subject, Username: claims.Username}, nil
}

// TTL is the lifetime tokens are issued with; the HTTP layer mirrors it in
// the cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

var _ SessionVerifier = (*SessionService)(nil)
