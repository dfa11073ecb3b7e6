package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func TestTokenManagerIssueAndVerify(t *testing.T) {
	tm := NewTokenManager(testSecret, 24*time.Hour, nil)

	token, err := tm.Issue(context.Background(), "user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Greater(t, claims.ExpiresAt, uint64(time.Now().UnixMilli()))
}

func TestTokenManagerExpiry(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)
	base := time.Now()
	tm.now = func() time.Time { return base }

	token, err := tm.Issue(context.Background(), "user-7")
	require.NoError(t, err)

	// Still valid one millisecond before expiry.
	tm.now = func() time.Time { return base.Add(time.Hour - time.Millisecond) }
	_, err = tm.Verify(token)
	assert.NoError(t, err)

	// Exactly at expiry counts as expired; validity requires exp > now.
	tm.now = func() time.Time { return base.Add(time.Hour) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	tm.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManagerWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)
	other := NewTokenManager("a-different-secret", time.Hour, nil)

	token, err := tm.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenManagerTamperedSignature(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)

	token, err := tm.Issue(context.Background(), "user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenManagerMalformedInput(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, nil)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "not.a.jwt"},
		{name: "missing segments", token: "onlyonesegment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Verify(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestTokenManagerRejectsForeignAlgorithm(t *testing.T) {
	// A token signed with HS256 must not validate even with the right secret.
	hs256 := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiJ1c2VyLTEiLCJleHAiOjk5OTk5OTk5OTk5OTk5fQ." +
		"invalid"

	tm := NewTokenManager(testSecret, time.Hour, nil)
	_, err := tm.Verify(hs256)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
