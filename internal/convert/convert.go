// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert defines the document conversion adapter the batch
// orchestrator depends on, and the backends that implement it.
//
// A backend turns one input file into a Document that can be exported as
// Markdown text or as a nested map suitable for JSON. The extraction itself
// is delegated to an external engine (a container image, a PDF library, or a
// docling-serve instance); this package only adapts their output.
package convert

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbatch/pkg/types"
)

// ErrNoText is returned when a backend produced no usable content.
var ErrNoText = errors.New("no text extracted")

// Document is a converted document.
type Document interface {
	// ExportToMarkdown renders the document body as Markdown.
	ExportToMarkdown() (string, error)

	// ExportToDict returns the structured document as a nested map of
	// JSON-compatible values.
	ExportToDict() (map[string]any, error)
}

// Result is what a Converter returns for one file.
type Result struct {
	// Source is the converted file path.
	Source string

	// Backend names the engine that produced Document.
	Backend types.ConverterBackend

	Document Document
}

// Converter turns a file into a Document. Implementations must be safe for
// concurrent use: the batch orchestrator shares one Converter across workers.
type Converter interface {
	Convert(ctx context.Context, path string) (*Result, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, path string) (*Result, error)

// Convert calls f(ctx, path).
func (f ConverterFunc) Convert(ctx context.Context, path string) (*Result, error) {
	return f(ctx, path)
}

// MarkdownDocument is a Document backed by Markdown text. Its structured
// form is derived from the Markdown by Structure.
type MarkdownDocument struct {
	// Name is the document name, usually the source file stem.
	Name string

	Markdown string
}

// ExportToMarkdown returns the Markdown unchanged.
func (d *MarkdownDocument) ExportToMarkdown() (string, error) {
	return d.Markdown, nil
}

// ExportToDict parses the Markdown into a block structure.
func (d *MarkdownDocument) ExportToDict() (map[string]any, error) {
	return Structure(d.Name, []byte(d.Markdown)), nil
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
