// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/pkg/types"
)

func TestParseMetadataPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    types.BatchMetadata
		wantErr bool
	}{
		{name: "none", pairs: nil, want: types.BatchMetadata{}},
		{
			name:  "simple",
			pairs: []string{"project=atlas", "owner = ops"},
			want:  types.BatchMetadata{"project": "atlas", "owner": " ops"},
		},
		{name: "value with equals", pairs: []string{"query=a=b"}, want: types.BatchMetadata{"query": "a=b"}},
		{name: "empty value", pairs: []string{"note="}, want: types.BatchMetadata{"note": ""}},
		{name: "later wins", pairs: []string{"k=1", "k=2"}, want: types.BatchMetadata{"k": "2"}},
		{name: "missing equals", pairs: []string{"project"}, wantErr: true},
		{name: "empty key", pairs: []string{"=value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadataPairs(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMetadataFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("mapping", func(t *testing.T) {
		got, err := LoadMetadataFile(write("meta.yaml", "project: atlas\nyear: 2026\nreviewed: true\n"))
		require.NoError(t, err)
		assert.Equal(t, types.BatchMetadata{"project": "atlas", "year": 2026, "reviewed": true}, got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := LoadMetadataFile(write("empty.yaml", ""))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("sequence", func(t *testing.T) {
		_, err := LoadMetadataFile(write("list.yaml", "- a\n- b\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a mapping")
	})

	t.Run("nested string keys", func(t *testing.T) {
		got, err := LoadMetadataFile(write("nested.yaml", "tags:\n  lang: en\nauthors:\n  - name: ada\n"))
		require.NoError(t, err)
		assert.Equal(t, types.BatchMetadata{
			"tags":    map[string]any{"lang": "en"},
			"authors": []any{map[string]any{"name": "ada"}},
		}, got)
	})

	nonString := []struct {
		name    string
		content string
		want    string
	}{
		{name: "top level int key", content: "1: a\n", want: "must be a mapping"},
		{name: "nested int key", content: "tags: {1: a}\n", want: `under "tags"`},
		{name: "nested bool key in list", content: "items:\n  - {true: x}\n", want: `under "items[0]"`},
	}
	for _, tt := range nonString {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMetadataFile(write("keys.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := LoadMetadataFile(write("bad.yaml", "key: [unclosed\n"))
		require.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadMetadataFile(filepath.Join(dir, "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMergeMetadata(t *testing.T) {
	base := types.BatchMetadata{"project": "atlas", "year": 2025}
	got := MergeMetadata(base, types.BatchMetadata{"year": "2026", "owner": "ops"})
	assert.Equal(t, types.BatchMetadata{"project": "atlas", "year": "2026", "owner": "ops"}, got)
	assert.Equal(t, 2025, base["year"])

	assert.Empty(t, MergeMetadata(nil, nil))
}

func TestFreezeMetadata(t *testing.T) {
	assert.Equal(t, types.BatchMetadata{}, freezeMetadata(nil, zap.NewNop()))

	in := types.BatchMetadata{"source_file": "x", "k": "v"}
	got := freezeMetadata(in, zap.NewNop())
	assert.Equal(t, types.BatchMetadata{"k": "v"}, got)
	assert.Contains(t, in, "source_file")
}

func TestFileMetadata(t *testing.T) {
	got := fileMetadata("a.pdf", fixedTime, types.BatchMetadata{"k": "v"})
	assert.Equal(t, map[string]any{
		"k":               "v",
		"source_file":     "a.pdf",
		"extraction_date": "2026-03-01T12:00:00Z",
	}, got)
}
