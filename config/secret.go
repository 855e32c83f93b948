// config/secret.go
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// SecretKeyEnv is the environment key holding the signing secret.
	SecretKeyEnv = "SECRET_KEY"

	// InsecureSecretKey is the development placeholder that must never be
	// used with DEBUG off.
	InsecureSecretKey = "unsafe-development-key" // nolint:gosec // known placeholder, rejected in production

	secretTokenBytes = 64
)

// ErrImproperlyConfigured is wrapped by every fatal configuration error.
var ErrImproperlyConfigured = errors.New("improperly configured")

// generateToken is swapped in tests.
var generateToken = randomURLSafeToken

func randomURLSafeToken() (string, error) {
	buf := make([]byte, secretTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// LoadSecretKey resolves SECRET_KEY through lookup. When the key is absent a
// random URL-safe token is generated; it is not persisted, so tokens signed by
// one process are invalid after a restart unless SECRET_KEY is set.
func LoadSecretKey(lookup LookupFunc) (string, error) {
	value, ok, err := lookup(SecretKeyEnv)
	if err != nil {
		customLog.WithError(err).Error("Unable to load SECRET_KEY from environment.")
		return "", fmt.Errorf("%w: %s could not be loaded from the environment: %v", ErrImproperlyConfigured, SecretKeyEnv, err)
	}

	if !ok {
		value, err = generateToken()
		if err != nil {
			return "", fmt.Errorf("%w: could not generate a default %s: %v", ErrImproperlyConfigured, SecretKeyEnv, err)
		}
	}

	if !utf8.ValidString(value) {
		return "", fmt.Errorf("%w: %s must be a string value", ErrImproperlyConfigured, SecretKeyEnv)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", ErrImproperlyConfigured, SecretKeyEnv)
	}

	return value, nil
}

// CheckSecretKeyPolicy rejects the development placeholder outside debug mode.
func CheckSecretKeyPolicy(secret string, debug bool) error {
	if !debug && secret == InsecureSecretKey {
		return fmt.Errorf("%w: %s must be set when DEBUG is False", ErrImproperlyConfigured, SecretKeyEnv)
	}
	return nil
}
