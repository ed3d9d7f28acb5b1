package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvToken, "")
}

func TestNoToken(t *testing.T) {
	setup(t)
	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)

	tok, err := Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSetGetDelete(t *testing.T) {
	setup(t)

	require.NoError(t, SetToken("Bearer abc123", nil))

	p, err := Path()
	require.NoError(t, err)
	fi, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc123", ti.Token)
	assert.Equal(t, SourceFile, ti.Source)

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken())
	ti, err = GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestEnvOverridesFile(t *testing.T) {
	setup(t)
	require.NoError(t, SetToken("from-file", nil))
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, SourceEnv, ti.Source)
}

func TestEmptyTokenRejected(t *testing.T) {
	setup(t)
	assert.ErrorIs(t, SetToken("  ", nil), ErrEmptyToken)
	assert.ErrorIs(t, SetToken("Bearer ", nil), ErrEmptyToken)
}

func TestExpiredTokenIsIgnored(t *testing.T) {
	setup(t)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, SetToken("old", &past))

	tok, err := Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestCorruptCredentials(t *testing.T) {
	setup(t)
	p, err := Path()
	require.NoError(t, err)
	require.NoError(t, SetToken("x", nil))
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o600))

	_, err = GetToken()
	assert.ErrorContains(t, err, "parse credentials")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "****5678", Mask("12345678"))
}
