package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple", "Abcdef1!"},
		{"long", strings.Repeat("a", 200)},
		{"empty", ""},
		{"greek", "Κωδικός1!"},
		{"whitespace", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.NotEmpty(t, parts[4], "salt")
			require.NotEmpty(t, parts[5], "digest")

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifyPassword("same-input", a))
	require.NoError(t, VerifyPassword("same-input", b))
}

func TestVerifyPasswordMismatch(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"", "a", "Correct-password", "correct-password ", strings.Repeat("x", 10000)} {
		require.ErrorIs(t, VerifyPassword(wrong, hash), ErrPasswordMismatch, "input %q", wrong)
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"bcrypt", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{"too few parts", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA"},
		{"wrong version", "$argon2id$v=16$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=x,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"bad digest", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, VerifyPassword("whatever", tt.hash), ErrInvalidHash)
		})
	}
}

func TestPepperChangesDigest(t *testing.T) {
	hash, err := HashPassword("peppered")
	require.NoError(t, err)

	original := pepperFile
	t.Cleanup(func() { SetPepperPath(original) })

	SetPepperPath(filepath.Join(t.TempDir(), "other-pepper"))
	require.ErrorIs(t, VerifyPassword("peppered", hash), ErrPasswordMismatch)
}

func TestPepperPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	original := pepperFile
	t.Cleanup(func() { SetPepperPath(original) })

	SetPepperPath(path)
	first, err := Pepper()
	require.NoError(t, err)

	SetPepperPath(path)
	second, err := Pepper()
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
