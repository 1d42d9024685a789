package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "fslsm-tutor"

var errEmptySecret = errors.New("session secret is empty")

// Signer mints and verifies session tokens. The token's ID claim is the
// session ID; its expiry is the session expiry.
type Signer struct {
	secret []byte
}

// NewSigner creates a signer using an HMAC secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// NewSessionID returns a fresh random session ID.
func NewSessionID() string {
	return uuid.NewString()
}

// Sign returns a token for sessionID valid until expiresAt.
func (s *Signer) Sign(sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify returns the session ID carried by a valid, unexpired token.
func (s *Signer) Verify(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("verify session token: %w", err)
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("verify session token: invalid session id: %w", err)
	}
	return claims.ID, nil
}
