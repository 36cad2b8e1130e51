package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renbkna/yt-dlp-ui/types"
)

func newTestStore(t *testing.T) *CookieStore {
	t.Helper()
	store, err := NewCookieStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	return store
}

func testBundle() types.CookieBundle {
	return types.CookieBundle{Cookies: []types.Cookie{
		{Domain: "example.com", Name: "session", Value: "abc123", Path: "/", Secure: true, Expires: 1900000000},
		{Domain: ".youtube.com", Name: "SID", Value: "xyz", Secure: false},
	}}
}

func TestMaterializeAndRelease(t *testing.T) {
	store := newTestStore(t)

	artifact, err := store.Materialize(testBundle())
	require.NoError(t, err)
	require.FileExists(t, artifact)

	store.Release(artifact)
	assert.NoFileExists(t, artifact)

	// release is safe to call twice
	store.Release(artifact)

	entries, err := os.ReadDir(filepath.Dir(artifact))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterializeJarFormat(t *testing.T) {
	store := newTestStore(t)

	artifact, err := store.Materialize(testBundle())
	require.NoError(t, err)
	defer store.Release(artifact)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "# Netscape HTTP Cookie File", lines[0])

	first := strings.Split(lines[1], "\t")
	require.Len(t, first, 7)
	assert.Equal(t, ".example.com", first[0]) // normalized to leading dot
	assert.Equal(t, "TRUE", first[1])
	assert.Equal(t, "/", first[2])
	assert.Equal(t, "TRUE", first[3])
	assert.Equal(t, "1900000000", first[4])
	assert.Equal(t, "session", first[5])
	assert.Equal(t, "abc123", first[6])

	second := strings.Split(lines[2], "\t")
	assert.Equal(t, ".youtube.com", second[0]) // already dotted, kept as is
	assert.Equal(t, "FALSE", second[3])
	assert.Equal(t, "0", second[4]) // session cookie
}

func TestMaterializeValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name   string
		bundle types.CookieBundle
	}{
		{"empty bundle", types.CookieBundle{}},
		{"missing domain", types.CookieBundle{Cookies: []types.Cookie{{Name: "a", Value: "b"}}}},
		{"missing name", types.CookieBundle{Cookies: []types.Cookie{{Domain: "example.com", Value: "b"}}}},
		{"tab in value", types.CookieBundle{Cookies: []types.Cookie{{Domain: "example.com", Name: "a", Value: "b\tc"}}}},
		{"newline in name", types.CookieBundle{Cookies: []types.Cookie{{Domain: "example.com", Name: "a\nb", Value: "c"}}}},
		{"domain with slash", types.CookieBundle{Cookies: []types.Cookie{{Domain: "example.com/path", Name: "a", Value: "b"}}}},
		{"domain without dot", types.CookieBundle{Cookies: []types.Cookie{{Domain: "localhost", Name: "a", Value: "b"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Materialize(tt.bundle)
			var validation *types.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestSweepExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCookieStore(dir, time.Hour)
	require.NoError(t, err)

	fresh, err := store.Materialize(testBundle())
	require.NoError(t, err)

	stale, err := store.Materialize(testBundle())
	require.NoError(t, err)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed := store.SweepExpired()
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)

	store.Release(fresh)
}
