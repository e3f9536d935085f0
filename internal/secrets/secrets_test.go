// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, DoclingAPIKey, "  dk_abc123  \n")
				writeFile(t, dir, "other-key", "value")
				return dir
			},
			want: map[string]string{
				DoclingAPIKey: "dk_abc123",
				"other-key":   "value",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, DoclingAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{DoclingAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, DoclingAPIKey, "dk_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{DoclingAPIKey: "dk_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	core, logs := observer.New(zap.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)

	entries := logs.FilterMessage("could not read secret").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad-key", entries[0].ContextMap()["key"])
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCBATCH_TEST_FROM_FILE=file\nDOCBATCH_TEST_PRESET=file\n"), 0o644))

	t.Setenv("DOCBATCH_TEST_PRESET", "shell")
	t.Setenv("DOCBATCH_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("DOCBATCH_TEST_FROM_FILE"))

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "file", os.Getenv("DOCBATCH_TEST_FROM_FILE"))
	assert.Equal(t, "shell", os.Getenv("DOCBATCH_TEST_PRESET"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))
}

func TestDefault(t *testing.T) {
	s := map[string]string{DoclingAPIKey: "from-file"}
	assert.Equal(t, "explicit", Default(s, DoclingAPIKey, "explicit"))
	assert.Equal(t, "from-file", Default(s, DoclingAPIKey, ""))
	assert.Equal(t, "", Default(s, "absent", ""))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
