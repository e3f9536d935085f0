// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/docbatch/pkg/types"
)

// pageSeparator joins page texts in the Markdown export.
const pageSeparator = "\n\n---\n\n"

// PDFTextConverter extracts the embedded text layer of a PDF with
// github.com/ledongthuc/pdf. Scanned, image-only PDFs yield ErrNoText.
type PDFTextConverter struct{}

// NewPDFTextConverter returns a text-layer PDF converter.
func NewPDFTextConverter() *PDFTextConverter {
	return &PDFTextConverter{}
}

// Convert opens the PDF at path and reads the plain text of every page.
// The pdf library panics on some malformed files; those panics are returned
// as errors.
func (c *PDFTextConverter) Convert(ctx context.Context, path string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("reading pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	doc := &PDFDocument{
		Name:     Stem(path),
		NumPages: r.NumPage(),
	}
	doc.Title, doc.Author = infoStrings(r)

	fonts := make(map[string]*pdf.Font)
	hasText := false
	for i := 1; i <= doc.NumPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("reading pdf %s page %d: %w", path, i, err)
		}
		text = strings.TrimSpace(text)
		if text != "" {
			hasText = true
		}
		doc.Pages = append(doc.Pages, PageText{Page: i, Text: text})
	}

	if !hasText {
		return nil, fmt.Errorf("pdf %s: %w", path, ErrNoText)
	}

	return &Result{Source: path, Backend: types.BackendPdftext, Document: doc}, nil
}

// infoStrings reads Title and Author from the trailer Info dictionary.
func infoStrings(r *pdf.Reader) (title, author string) {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return "", ""
	}
	return strings.TrimSpace(info.Key("Title").Text()), strings.TrimSpace(info.Key("Author").Text())
}

// PageText is the extracted text of one PDF page.
type PageText struct {
	Page int
	Text string
}

// PDFDocument is a Document made of per-page text.
type PDFDocument struct {
	Name     string
	Title    string
	Author   string
	NumPages int
	Pages    []PageText
}

// ExportToMarkdown renders the title as a heading followed by the non-empty
// pages separated by thematic breaks.
func (d *PDFDocument) ExportToMarkdown() (string, error) {
	var parts []string
	for _, p := range d.Pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	body := strings.Join(parts, pageSeparator)
	if d.Title != "" {
		return "# " + d.Title + "\n\n" + body + "\n", nil
	}
	return body + "\n", nil
}

// ExportToDict returns the document with one entry per page.
func (d *PDFDocument) ExportToDict() (map[string]any, error) {
	pages := make([]any, 0, len(d.Pages))
	for _, p := range d.Pages {
		pages = append(pages, map[string]any{
			"page":       p.Page,
			"text":       p.Text,
			"characters": len([]rune(p.Text)),
		})
	}
	return map[string]any{
		"name":      d.Name,
		"title":     d.Title,
		"author":    d.Author,
		"num_pages": d.NumPages,
		"pages":     pages,
	}, nil
}
