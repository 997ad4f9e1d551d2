package config

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyLifecycle(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(EnvFilePath(dir), []byte("OTHER=value\n"), 0600))

	key, err := GetAPIKey(dir)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, SetAPIKey(dir, "  sk-test-1234567890  "))

	key, err = GetAPIKey(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-1234567890", key)

	values, err := godotenv.Read(EnvFilePath(dir))
	require.NoError(t, err)
	assert.Equal(t, "value", values["OTHER"])

	deleted, err := DeleteAPIKey(dir)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = DeleteAPIKey(dir)
	require.NoError(t, err)
	assert.False(t, deleted)

	values, err = godotenv.Read(EnvFilePath(dir))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OTHER": "value"}, values)
}

func TestGetAPIKey_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SetAPIKey(dir, "from-file"))
	t.Setenv(APIKeyEnv, "from-env")

	key, err := GetAPIKey(dir)

	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestSetAPIKey_RejectsEmpty(t *testing.T) {
	assert.Error(t, SetAPIKey(t.TempDir(), "   "))
}

func TestDeleteAPIKey_NoEnvFile(t *testing.T) {
	deleted, err := DeleteAPIKey(t.TempDir())

	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "sk-a**********wxyz", MaskAPIKey("sk-abcdefghijkwxyz"))
	assert.Equal(t, "*****", MaskAPIKey("short"))
	assert.Equal(t, "", MaskAPIKey(""))
}
