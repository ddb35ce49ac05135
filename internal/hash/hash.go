// Package hash turns passwords into storable bcrypt hashes and checks them.
//
// Every password is combined with a server-side pepper before bcrypt sees it.
// The pepper is keyed into an HMAC-SHA256 of the password, so its length never
// eats into bcrypt's 72 byte input limit and it is never stored next to the hash.
package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new hashes.
const Cost = 10

var (
	ErrHashing       = errors.New("password hashing failed")
	ErrMalformedHash = errors.New("malformed password hash")
)

type Hasher struct {
	pepper []byte
	cost   int

	decoyOnce sync.Once
	decoy     []byte
}

func NewHasher(pepper []byte) *Hasher {
	return &Hasher{
		pepper: append([]byte(nil), pepper...),
		cost:   Cost,
	}
}

func (h *Hasher) peppered(password string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	sum := mac.Sum(nil)

	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum)
	return out
}

// HashPassword returns a bcrypt hash with a fresh random salt. The salt and
// cost are encoded in the result.
func (h *Hasher) HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword(h.peppered(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}

	return string(hashbytes), nil
}

// CheckPassword reports whether password matches hash. A wrong password is
// (false, nil); an unparsable hash is (false, ErrMalformedHash).
func (h *Hasher) CheckPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.peppered(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// CheckMissing does the same bcrypt work as CheckPassword against a decoy
// hash. Login calls it for unknown accounts so both failures take as long.
func (h *Hasher) CheckMissing(password string) {
	h.decoyOnce.Do(func() {
		h.decoy, _ = bcrypt.GenerateFromPassword(h.peppered("no such account"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.decoy, h.peppered(password))
}
