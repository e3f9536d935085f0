// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructure(t *testing.T) {
	src := "# Attention Is All You Need\n\n" +
		"The dominant sequence\ntransduction models.\n\n" +
		"## Model\n\n" +
		"- encoder\n- decoder\n\n" +
		"1. first\n2. second\n\n" +
		"```python\nx = 1\n```\n\n" +
		"> quoted text\n\n" +
		"| Layer | Size |\n|---|---|\n| 1 | 512 |\n\n" +
		"---\n\n" +
		"See <https://arxiv.org> for **more**.\n"

	got := Structure("1706.03762", []byte(src))

	assert.Equal(t, "1706.03762", got["name"])
	assert.Equal(t, "Attention Is All You Need", got["title"])

	blocks, ok := got["blocks"].([]any)
	require.True(t, ok)

	want := []any{
		map[string]any{"type": BlockHeading, "level": 1, "text": "Attention Is All You Need"},
		map[string]any{"type": BlockParagraph, "text": "The dominant sequence transduction models."},
		map[string]any{"type": BlockHeading, "level": 2, "text": "Model"},
		map[string]any{"type": BlockList, "ordered": false, "items": []any{"encoder", "decoder"}},
		map[string]any{"type": BlockList, "ordered": true, "items": []any{"first", "second"}},
		map[string]any{"type": BlockCode, "language": "python", "text": "x = 1"},
		map[string]any{"type": BlockQuote, "text": "quoted text"},
		map[string]any{"type": BlockTable, "rows": []any{[]any{"Layer", "Size"}, []any{"1", "512"}}},
		map[string]any{"type": BlockParagraph, "text": "See https://arxiv.org for more."},
	}
	assert.Equal(t, want, blocks)
}

func TestStructureTitleFallback(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "first level-1 heading wins", src: "## Intro\n\n# Real Title\n", want: "Real Title"},
		{name: "falls back to first heading", src: "### Abstract\n\ntext\n", want: "Abstract"},
		{name: "no headings", src: "plain text only\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Structure("doc", []byte(tt.src))["title"])
		})
	}
}

func TestStructureEmpty(t *testing.T) {
	got := Structure("empty", nil)
	assert.Equal(t, []any{}, got["blocks"])
}
