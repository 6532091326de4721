package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outbound-caller/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "outbound-caller"

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrParseJWTToken   = errors.New("failed to parse jwt token")
	ErrExpiredToken    = errors.New("token expired")
	ErrMissingSecret   = errors.New("jwt secret is required")
)

// Claims identifies the operator or service allowed to place calls.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator issues and validates HS256 tokens for the call API.
type Authenticator struct {
	secret []byte
	logger *observability.Logger
}

func New(secret string, logger *observability.Logger) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Authenticator{secret: []byte(secret), logger: logger}, nil
}

// IssueToken signs a token for subject valid for ttl.
func (a *Authenticator) IssueToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		a.logger.Error(ctx, "failed to sign token", err)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ValidateToken parses token and checks its signature, expiry and audience.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (Claims, error) {
	var claims Claims
	t, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithAudience(issuer), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			a.logger.WarnWithError(ctx, "token expired", err)
			return Claims{}, ErrExpiredToken
		}
		a.logger.WarnWithError(ctx, "failed to parse token", err)
		return Claims{}, ErrParseJWTToken
	}
	if !t.Valid {
		return Claims{}, ErrInvalidJWTToken
	}
	return claims, nil
}
