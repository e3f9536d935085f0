// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docbatch/pkg/types"
)

// fakeRuntime implements container.Runtime for testing. It echoes a canned
// output or returns an error, depending on configuration.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotInput string
	gotImage string
}

func (f *fakeRuntime) Name() string { return "docker" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }
func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	data, _ := io.ReadAll(stdin)
	f.gotInput = string(data)
	f.gotImage = image
	if f.runErr != nil {
		return f.runErr
	}
	_, _ = io.WriteString(stdout, f.output)
	return nil
}

// writeInput creates a file named name in a temp dir and returns its path.
func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewMarkitdownConverter(t *testing.T) {
	t.Run("default image", func(t *testing.T) {
		c, err := NewMarkitdownConverter(context.Background(), &fakeRuntime{}, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultMarkitdownImage, c.image)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := NewMarkitdownConverter(context.Background(), &fakeRuntime{imageErr: errors.New("no such image")}, "custom:1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "markitdown image not available in docker")
	})
}

func TestMarkitdownConvert(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantErr error
		errMsg  string
		wantMD  string
	}{
		{
			name:   "successful conversion",
			rt:     &fakeRuntime{output: "# Paper Title\n\nSome content."},
			wantMD: "# Paper Title\n\nSome content.",
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{output: "  \n"},
			wantErr: ErrNoText,
		},
		{
			name:   "container failure",
			rt:     &fakeRuntime{runErr: errors.New("exit status 1")},
			errMsg: "converting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "2301.07041.pdf", "fake pdf")
			c, err := NewMarkitdownConverter(context.Background(), tt.rt, "")
			require.NoError(t, err)

			res, err := c.Convert(context.Background(), path)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				return
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "fake pdf", tt.rt.gotInput)
			assert.Equal(t, types.BackendMarkitdown, res.Backend)

			md, err := res.Document.ExportToMarkdown()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMD, md)

			dict, err := res.Document.ExportToDict()
			require.NoError(t, err)
			assert.Equal(t, "2301.07041", dict["name"])
			assert.Equal(t, "Paper Title", dict["title"])
		})
	}
}

func TestMarkitdownConvertMissingFile(t *testing.T) {
	c, err := NewMarkitdownConverter(context.Background(), &fakeRuntime{output: "x"}, "")
	require.NoError(t, err)

	_, err = c.Convert(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPDFTextConvertRejectsInvalidInput(t *testing.T) {
	c := NewPDFTextConverter()

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)

	garbage := writeInput(t, "broken.pdf", strings.Repeat("not a pdf ", 20))
	_, err = c.Convert(context.Background(), garbage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
}

func TestPDFDocumentExports(t *testing.T) {
	doc := &PDFDocument{
		Name:     "report",
		Title:    "Quarterly Report",
		Author:   "Finance",
		NumPages: 3,
		Pages: []PageText{
			{Page: 1, Text: "Revenue grew."},
			{Page: 2, Text: ""},
			{Page: 3, Text: "Costs fell."},
		},
	}

	md, err := doc.ExportToMarkdown()
	require.NoError(t, err)
	assert.Equal(t, "# Quarterly Report\n\nRevenue grew.\n\n---\n\nCosts fell.\n", md)

	dict, err := doc.ExportToDict()
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", dict["title"])
	assert.Equal(t, 3, dict["num_pages"])
	pages, ok := dict["pages"].([]any)
	require.True(t, ok)
	require.Len(t, pages, 3)
	assert.Equal(t, map[string]any{"page": 1, "text": "Revenue grew.", "characters": 13}, pages[0])
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.ConverterConfig
		wantErr string
		check   func(t *testing.T, c Converter)
	}{
		{
			name: "pdftext",
			cfg:  types.ConverterConfig{Backend: types.BackendPdftext},
			check: func(t *testing.T, c Converter) {
				assert.IsType(t, &PDFTextConverter{}, c)
			},
		},
		{
			name: "docling-serve",
			cfg:  types.ConverterConfig{Backend: types.BackendDoclingServe, ServerURL: "http://localhost:5001/", APIKey: "dk"},
			check: func(t *testing.T, c Converter) {
				d, ok := c.(*DoclingConverter)
				require.True(t, ok)
				assert.Equal(t, "http://localhost:5001", d.baseURL)
				assert.Equal(t, "dk", d.apiKey)
				assert.Equal(t, DefaultTimeout, d.client.Timeout)
			},
		},
		{
			name:    "docling-serve without url",
			cfg:     types.ConverterConfig{Backend: types.BackendDoclingServe},
			wantErr: "requires a server URL",
		},
		{
			name:    "unknown backend",
			cfg:     types.ConverterConfig{Backend: "tesseract"},
			wantErr: "unknown converter backend",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "2301.07041", Stem("/papers/raw/2301.07041.pdf"))
	assert.Equal(t, "notes", Stem("notes"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
}

func TestConverterFunc(t *testing.T) {
	var c Converter = ConverterFunc(func(_ context.Context, path string) (*Result, error) {
		return &Result{Source: path, Document: &MarkdownDocument{Markdown: "ok"}}, nil
	})
	res, err := c.Convert(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", res.Source)
}
