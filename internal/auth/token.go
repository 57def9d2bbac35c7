package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kopiteras/cafe/internal/account"
)

// SessionClaims is the claim set carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role"`
	ImageMarker int64  `json:"img,omitempty"`
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager. Tokens expire ttl after issuance.
func NewTokenManager(secret []byte, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Sign encodes the identity into a signed token and returns it with its expiry.
func (m *TokenManager) Sign(id *Identity) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("session secret not configured")
	}

	now := time.Now()
	exp := now.Add(m.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(id.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email:       id.Email,
		Name:        id.Name,
		Role:        string(id.Role),
		ImageMarker: id.ImageMarker,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}

	return signed, exp, nil
}

// Parse verifies signature, algorithm, issuer and expiry and returns the encoded identity.
func (m *TokenManager) Parse(tokenStr string) (*Identity, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("session secret not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)

	var claims SessionClaims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid subject claim")
	}

	role := account.Role(claims.Role)
	if !role.Valid() {
		return nil, errors.New("invalid role claim")
	}

	return &Identity{
		AccountID:   id,
		Email:       claims.Email,
		Name:        claims.Name,
		Role:        role,
		ImageMarker: claims.ImageMarker,
		TokenID:     claims.ID,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
