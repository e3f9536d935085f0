// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/pkg/types"
)

// envelopeSchema describes a JSON output file.
const envelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["metadata", "content"],
  "additionalProperties": false,
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["source_file", "extraction_date"],
      "properties": {
        "source_file": {"type": "string", "minLength": 1},
        "extraction_date": {"type": "string", "format": "date-time"}
      }
    },
    "content": {"type": "object"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func envelopeValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		c.AssertFormat = true
		if err := c.AddResource("envelope.json", strings.NewReader(envelopeSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("envelope.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Envelope is the JSON output document.
type Envelope struct {
	Metadata map[string]any `json:"metadata"`
	Content  map[string]any `json:"content"`
}

// EncodeJSON serializes env with two-space indentation, leaving HTML and
// non-ASCII characters unescaped, and validates the result against the
// envelope schema.
func EncodeJSON(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	sch, err := envelopeValidator()
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("json does not match schema: %w", err)
	}
	return buf.Bytes(), nil
}

// render produces the bytes written for doc in format.
func render(doc convert.Document, format types.ExportFormat, meta map[string]any) ([]byte, error) {
	switch format {
	case types.FormatJSON:
		dict, err := doc.ExportToDict()
		if err != nil {
			return nil, fmt.Errorf("exporting dict: %w", err)
		}
		return EncodeJSON(Envelope{Metadata: meta, Content: dict})
	case types.FormatMarkdown:
		md, err := doc.ExportToMarkdown()
		if err != nil {
			return nil, fmt.Errorf("exporting markdown: %w", err)
		}
		return []byte(md), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docbatch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
