package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ProofINer/proofin-backend/internal/domain"
)

// Claims carries the wallet identity inside a session token. The random
// jti makes every issued token distinct and unguessable even for the
// same wallet logging in twice within a second.
type Claims struct {
	Address string      `json:"address"`
	Role    domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager mints and checks HS256 session tokens. Possession of a
// well-formed token is never enough on its own; the session store is
// the source of truth for validity.
type TokenManager struct {
	secret string
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "proofin"
	}
	return &TokenManager{secret: secret, issuer: issuer}
}

// GenerateToken mints a token for a wallet+role pair.
func (tm *TokenManager) GenerateToken(address string, role domain.Role, expiresIn time.Duration) (string, error) {
	if address == "" || !role.Valid() {
		return "", fmt.Errorf("address and valid role required")
	}
	now := time.Now()
	claims := Claims{
		Address: domain.NormalizeAddress(address),
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

// ValidateToken checks signature and shape. Expiry and revocation are
// resolved against the session store, not here.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
