package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNoKey(t *testing.T) {
	t.Setenv(EnvKey, "")
	ki, err := New(t.TempDir()).Get()
	require.NoError(t, err)
	assert.Nil(t, ki)
}

func TestSetGetDelete(t *testing.T) {
	t.Setenv(EnvKey, "")
	dir := filepath.Join(t.TempDir(), ".shoplist")
	c := New(dir)

	require.NoError(t, c.Set("  Bearer sk-abcdef123456 "))

	st, err := os.Stat(filepath.Join(dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	ki, err := c.Get()
	require.NoError(t, err)
	require.NotNil(t, ki)
	assert.Equal(t, "sk-abcdef123456", ki.Key)
	assert.Equal(t, "file", ki.Source)
	assert.False(t, ki.CreatedAt.IsZero())

	require.NoError(t, c.Delete())
	ki, err = c.Get()
	require.NoError(t, err)
	assert.Nil(t, ki)
	require.NoError(t, c.Delete(), "deleting twice is fine")
}

func TestEnvWins(t *testing.T) {
	c := New(t.TempDir())
	t.Setenv(EnvKey, "")
	require.NoError(t, c.Set("sk-file"))

	t.Setenv(EnvKey, "sk-env")
	ki, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, KeyInfo{Key: "sk-env", Source: "env"}, *ki)
}

func TestSetEmpty(t *testing.T) {
	assert.Error(t, New(t.TempDir()).Set("   "))
}

func TestCorruptFile(t *testing.T) {
	t.Setenv(EnvKey, "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, credFileName), []byte("{"), 0o600))
	_, err := New(dir).Get()
	assert.Error(t, err)
}

func TestMasked(t *testing.T) {
	assert.Equal(t, "********3456", KeyInfo{Key: "sk-abcdef123456"}.Masked())
	assert.Equal(t, "***", KeyInfo{Key: "abc"}.Masked())
}
