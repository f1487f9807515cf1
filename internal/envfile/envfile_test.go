package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) Lookup {
	return func(key string) string { return m[key] }
}

func TestRender_FixedOrder(t *testing.T) {
	t.Parallel()

	content := Render(lookupFrom(map[string]string{
		"BOT_TOKEN":         "abc",
		"TELEGRAM_API_ID":   "123",
		"TELEGRAM_API_HASH": "def",
		"PORT":              "8080",
		"PYTHONUNBUFFERED":  "1",
	}))

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 6, "env file must have exactly six lines")

	want := []string{
		"BOT_TOKEN=abc",
		"TELEGRAM_API_ID=123",
		"TELEGRAM_API_HASH=def",
		"ADMIN_IDS=",
		"PORT=8080",
		"PYTHONUNBUFFERED=1",
	}
	assert.Equal(t, want, lines)
}

func TestRender_ValuesVerbatim(t *testing.T) {
	t.Parallel()

	// Tokens contain colons and the admin list contains commas; neither
	// may be escaped or quoted.
	content := Render(lookupFrom(map[string]string{
		"BOT_TOKEN": "123456:ABC-DEF_ghi",
		"ADMIN_IDS": "588378991,1001",
	}))

	assert.Contains(t, content, "BOT_TOKEN=123456:ABC-DEF_ghi\n")
	assert.Contains(t, content, "ADMIN_IDS=588378991,1001\n")
}

func TestMaterialize_RoundTrip(t *testing.T) {
	t.Parallel()

	values := map[string]string{
		"BOT_TOKEN":         "123456:token",
		"TELEGRAM_API_ID":   "7654321",
		"TELEGRAM_API_HASH": "0123456789abcdef",
		"ADMIN_IDS":         "588378991",
		"PORT":              "8080",
		"PYTHONUNBUFFERED":  "1",
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, Materialize(path, lookupFrom(values)))

	parsed, err := Read(path)
	require.NoError(t, err)
	for _, key := range Keys {
		assert.Equal(t, values[key], parsed[key], "round trip mismatch for %s", key)
	}
}

func TestMaterialize_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STALE=1\nBOT_TOKEN=old\n"), 0o600))

	require.NoError(t, Materialize(path, lookupFrom(map[string]string{"BOT_TOKEN": "new"})))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "STALE")
	assert.Contains(t, string(content), "BOT_TOKEN=new\n")
}

func TestMaterialize_DefaultsToProcessEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, Materialize(path, nil))

	parsed, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", parsed["BOT_TOKEN"])
}
