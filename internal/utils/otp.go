package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GenerateOTP returns a zero-padded 4-digit one-time code drawn from a
// cryptographically secure source.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// HashOTP returns a bcrypt hash of the code using the given cost.  Only
// the hash is stored; the plain code goes out over the notifier.
func HashOTP(code string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyOTP safely compares a bcrypt hash and a plain code.
func VerifyOTP(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
