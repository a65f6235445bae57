package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/medconsult/consultation-service/internal/domain"
)

var (
	// ErrMissingToken means the Authorization header carried no token segment.
	ErrMissingToken = errors.New("token missing")
	// ErrInvalidToken covers bad signatures, unexpected algorithms and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenManager handles issuing and validating JWT tokens with a single process-wide secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims is the access claim carried by a session token.
type Claims struct {
	ID    string      `json:"id"`
	Role  domain.Role `json:"role"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// Identity returns the caller described by the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.ID, Role: c.Role, Name: c.Name, Email: c.Email}
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// GenerateToken builds and signs a JWT for the identity.
func (tm *TokenManager) GenerateToken(id domain.Identity) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		ID:    id.ID,
		Role:  id.Role,
		Name:  id.Name,
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Verify extracts the token after the first space of an Authorization header value and validates it.
func (tm *TokenManager) Verify(rawHeader string) (*Claims, error) {
	_, rest, found := strings.Cut(strings.TrimSpace(rawHeader), " ")
	if !found {
		return nil, ErrMissingToken
	}
	token, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
