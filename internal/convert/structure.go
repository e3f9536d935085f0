// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Block types emitted by Structure.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockList      = "list"
	BlockCode      = "code"
	BlockQuote     = "quote"
	BlockTable     = "table"
)

// markdownParser is shared; goldmark parsers hold no per-parse state.
var markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// Structure parses Markdown into a JSON-compatible document map:
//
//	{"name": ..., "title": ..., "blocks": [{"type": "heading", "level": 1, "text": ...}, ...]}
//
// The title is the text of the first level-1 heading, falling back to the
// first heading of any level. Raw HTML and thematic breaks are dropped.
func Structure(name string, source []byte) map[string]any {
	doc := markdownParser.Parse(text.NewReader(source))

	blocks := []any{}
	title, fallback := "", ""
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		block := blockOf(n, source)
		if block == nil {
			continue
		}
		if block["type"] == BlockHeading {
			t, _ := block["text"].(string)
			if fallback == "" {
				fallback = t
			}
			if title == "" && block["level"] == 1 {
				title = t
			}
		}
		blocks = append(blocks, block)
	}
	if title == "" {
		title = fallback
	}

	return map[string]any{
		"name":   name,
		"title":  title,
		"blocks": blocks,
	}
}

func blockOf(n ast.Node, source []byte) map[string]any {
	switch node := n.(type) {
	case *ast.Heading:
		return map[string]any{"type": BlockHeading, "level": node.Level, "text": inlineText(node, source)}
	case *ast.Paragraph, *ast.TextBlock:
		return map[string]any{"type": BlockParagraph, "text": inlineText(node, source)}
	case *ast.List:
		items := []any{}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			items = append(items, childrenText(item, source, " "))
		}
		return map[string]any{"type": BlockList, "ordered": node.IsOrdered(), "items": items}
	case *ast.FencedCodeBlock:
		return map[string]any{"type": BlockCode, "language": string(node.Language(source)), "text": linesText(node, source)}
	case *ast.CodeBlock:
		return map[string]any{"type": BlockCode, "language": "", "text": linesText(node, source)}
	case *ast.Blockquote:
		return map[string]any{"type": BlockQuote, "text": childrenText(node, source, "\n")}
	case *extast.Table:
		// Header and body rows are both children of the table; cells are
		// children of rows.
		rows := []any{}
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			cells := []any{}
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, inlineText(cell, source))
			}
			rows = append(rows, cells)
		}
		return map[string]any{"type": BlockTable, "rows": rows}
	}
	return nil
}

// inlineText concatenates the text of n's descendants. Soft line breaks and
// nested block boundaries become spaces.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c != n && c.Type() == ast.TypeBlock && b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.HardLineBreak() {
				b.WriteByte('\n')
			} else if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// childrenText joins the text of n's block children with sep.
func childrenText(n ast.Node, source []byte, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var t string
		if isCode(c) {
			t = linesText(c, source)
		} else {
			t = inlineText(c, source)
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

func isCode(n ast.Node) bool {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return true
	}
	return false
}

func linesText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}
