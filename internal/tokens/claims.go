package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	AccessToken  TokenType = "accessToken"
	RefreshToken TokenType = "refreshToken"
)

const (
	AccessTTL  = 10 * time.Minute
	RefreshTTL = 30 * 24 * time.Hour
)

var ErrUnknownTokenType = errors.New("unknown token type")

func (t TokenType) Valid() bool {
	return t == AccessToken || t == RefreshToken
}

// User is the identity snapshot embedded in every token. It is copied at
// issuance and never re-read while the token lives.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

type Claims struct {
	TokenType TokenType `json:"tokenType"`
	User      User      `json:"user"`
	jwt.RegisteredClaims
}
