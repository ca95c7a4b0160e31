package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestUsable(t *testing.T) {
	tests := map[string]struct {
		token string
		want  bool
	}{
		"blank":         {token: "  ", want: false},
		"opaque":        {token: "abc123", want: true},
		"valid jwt":     {token: signed(t, time.Now().Add(time.Hour)), want: true},
		"expired jwt":   {token: signed(t, time.Now().Add(-time.Minute)), want: false},
		"jwt no expiry": {token: mustSign(t, jwt.MapClaims{"sub": "x"}), want: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Usable(tc.token))
		})
	}
}

func mustSign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()

	_, ok := store.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, " tok "))
	got, ok := store.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	assert.False(t, ok)
}

func TestMemoryTokenStore_ExpiredTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	require.NoError(t, store.Set(ctx, signed(t, time.Now().Add(-time.Hour))))

	_, ok := store.Get(ctx)
	assert.False(t, ok)
}

func TestMemorySessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemorySessions()

	require.NoError(t, sessions.ForSession("a").Set(ctx, "token-a"))

	_, ok := sessions.ForSession("b").Get(ctx)
	assert.False(t, ok)

	got, ok := sessions.ForSession("a").Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "token-a", got)
}

func TestFileTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))

	_, ok := store.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "persisted"))
	got, ok := store.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "persisted", got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing twice is not an error")
	_, ok = store.Get(ctx)
	assert.False(t, ok)
}
