package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/business_site/internal/logging"
)

var (
	ErrSigning     = errors.New("token signing failed")
	ErrMissingType = errors.New("token has no type")
	ErrEmptySecret = errors.New("token secret is empty")
)

type Secrets struct {
	Access  []byte
	Refresh []byte
}

type Option func(*Codec)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// Codec signs and verifies HS256 tokens, choosing the secret and lifetime
// from the token type.
type Codec struct {
	secrets Secrets
	now     func() time.Time
}

func NewCodec(secrets Secrets, opts ...Option) *Codec {
	c := &Codec{
		secrets: Secrets{
			Access:  append([]byte(nil), secrets.Access...),
			Refresh: append([]byte(nil), secrets.Refresh...),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) policy(typ TokenType) ([]byte, time.Duration, error) {
	var (
		secret []byte
		ttl    time.Duration
	)
	switch typ {
	case AccessToken:
		secret, ttl = c.secrets.Access, AccessTTL
	case RefreshToken:
		secret, ttl = c.secrets.Refresh, RefreshTTL
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownTokenType, typ)
	}
	if len(secret) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrEmptySecret, typ)
	}
	return secret, ttl, nil
}

// Sign issues a token of the given type for user. The expiry is returned
// alongside the token string.
func (c *Codec) Sign(user User, typ TokenType, subject string) (string, time.Time, error) {
	secret, ttl, err := c.policy(typ)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	now := c.now()
	exp := now.Add(ttl)
	claims := Claims{
		TokenType: typ,
		User:      user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return token, exp, nil
}

// Decode reads the claims without checking the signature or expiry. Only
// Verify may be used to trust a token.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Verify returns the claims of a token whose signature and expiry check out
// against the secret of its own declared type. Any failure is reported as
// (nil, false); the cause is only logged.
func (c *Codec) Verify(ctx context.Context, tokenStr string) (*Claims, bool) {
	claims, err := c.verify(tokenStr)
	if err != nil {
		l := logging.FromContext(ctx).With("component", "tokens.verify")
		if errors.Is(err, jwt.ErrTokenExpired) {
			l.Debug("token_rejected", "reason", "expired")
		} else {
			l.Warn("token_rejected", "reason", "invalid", "error", err)
		}
		return nil, false
	}
	return claims, true
}

func (c *Codec) verify(tokenStr string) (*Claims, error) {
	decoded, err := c.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if decoded.TokenType == "" {
		return nil, ErrMissingType
	}

	secret, _, err := c.policy(decoded.TokenType)
	if err != nil {
		return nil, err
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("token is not valid")
	}
	return &claims, nil
}
