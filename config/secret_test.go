package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) LookupFunc {
	return NewEnvironment(values).Lookup
}

func TestLoadSecretKeyTrimsSuppliedValue(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "abc123", "abc123"},
		{"leading and trailing spaces", "  abc123  ", "abc123"},
		{"tabs and newlines", "\tabc 123\n", "abc 123"},
		{"placeholder is still a valid secret", InsecureSecretKey, InsecureSecretKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LoadSecretKey(lookupFrom(map[string]string{SecretKeyEnv: tc.input}))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoadSecretKeyRejectsBlankValues(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  "} {
		_, err := LoadSecretKey(lookupFrom(map[string]string{SecretKeyEnv: input}))
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, ErrImproperlyConfigured)
		assert.Contains(t, err.Error(), "cannot be empty")
	}
}

func TestLoadSecretKeyRejectsInvalidUTF8(t *testing.T) {
	_, err := LoadSecretKey(lookupFrom(map[string]string{SecretKeyEnv: "\xff\xfe"}))
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
	assert.Contains(t, err.Error(), "must be a string value")
}

func TestLoadSecretKeyLookupFailure(t *testing.T) {
	failing := func(string) (string, bool, error) { return "", false, errors.New("vault unreachable") }

	_, err := LoadSecretKey(failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
	assert.Contains(t, err.Error(), "vault unreachable")
}

func TestLoadSecretKeyGeneratesWhenAbsent(t *testing.T) {
	first, err := LoadSecretKey(lookupFrom(nil))
	require.NoError(t, err)
	second, err := LoadSecretKey(lookupFrom(nil))
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Len(t, first, 86) // 64 bytes, unpadded base64url
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
}

func TestLoadSecretKeyGenerationFailure(t *testing.T) {
	orig := generateToken
	t.Cleanup(func() { generateToken = orig })
	generateToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := LoadSecretKey(lookupFrom(nil))
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
}

func TestCheckSecretKeyPolicy(t *testing.T) {
	err := CheckSecretKeyPolicy(InsecureSecretKey, false)
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
	assert.Contains(t, err.Error(), "must be set when DEBUG is False")

	assert.NoError(t, CheckSecretKeyPolicy(InsecureSecretKey, true))
	assert.NoError(t, CheckSecretKeyPolicy("a-real-secret", false))
}
