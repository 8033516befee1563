package application

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAPIKeyHash is returned when a configured hash is not a bcrypt hash.
var ErrInvalidAPIKeyHash = errors.New("invalid api key hash format")

// APIKeyCost is the bcrypt cost used for new API key hashes.
const APIKeyCost = 12

// HashAPIKey returns a bcrypt hash suitable for the api_key_hash setting.
func HashAPIKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", newValidationError("key", "key is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), APIKeyCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey compares a presented key against a stored hash.
func VerifyAPIKey(hash, key string) error {
	if hash == "" {
		return ErrInvalidAPIKeyHash
	}
	if key == "" {
		return ErrUnauthorized
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrUnauthorized
	default:
		return errors.Join(ErrInvalidAPIKeyHash, err)
	}
}
