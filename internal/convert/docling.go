// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbatch/pkg/types"
)

const (
	doclingConvertPath = "/v1/convert/file"

	// maxErrorBody bounds how much of a non-200 response is quoted.
	maxErrorBody = 512
)

// docling-serve reports one of these conversion statuses.
const (
	doclingSuccess        = "success"
	doclingPartialSuccess = "partial_success"
)

// DoclingConverter sends documents to a docling-serve instance and returns
// the Markdown and structured JSON it produces. Each file is one request;
// failed requests are not retried.
type DoclingConverter struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewDoclingConverter returns a converter for the docling-serve instance at
// baseURL. The client's timeout bounds each conversion. A non-empty apiKey
// is sent with every request.
func NewDoclingConverter(client *http.Client, baseURL, apiKey string) (*DoclingConverter, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("docling-serve backend requires a server URL")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DoclingConverter{client: client, baseURL: baseURL, apiKey: apiKey}, nil
}

type doclingResponse struct {
	Document struct {
		Filename    string         `json:"filename"`
		MDContent   string         `json:"md_content"`
		JSONContent map[string]any `json:"json_content"`
	} `json:"document"`
	Status string `json:"status"`
	Errors []struct {
		ComponentType string `json:"component_type"`
		ModuleName    string `json:"module_name"`
		ErrorMessage  string `json:"error_message"`
	} `json:"errors"`
	ProcessingTime float64 `json:"processing_time"`
}

// Convert uploads the file at path and requests Markdown and JSON output.
func (d *DoclingConverter) Convert(ctx context.Context, path string) (*Result, error) {
	body, contentType, err := multipartFile(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+doclingConvertPath, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if d.apiKey != "" {
		req.Header.Set("X-Api-Key", d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docling-serve request for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("docling-serve returned HTTP %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(msg)))
	}

	var out doclingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing docling-serve response for %s: %w", path, err)
	}

	if out.Status != doclingSuccess && out.Status != doclingPartialSuccess {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.ErrorMessage)
		}
		return nil, fmt.Errorf("docling-serve conversion of %s ended with status %q: %s", path, out.Status, strings.Join(msgs, "; "))
	}
	if strings.TrimSpace(out.Document.MDContent) == "" && len(out.Document.JSONContent) == 0 {
		return nil, fmt.Errorf("docling-serve output for %s: %w", path, ErrNoText)
	}

	return &Result{
		Source:  path,
		Backend: types.BackendDoclingServe,
		Document: &DoclingDocument{
			Markdown: out.Document.MDContent,
			Content:  out.Document.JSONContent,
		},
	}, nil
}

// multipartFile builds a multipart body carrying the file and the requested
// output formats.
func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, format := range []string{"md", "json"} {
		if err := mw.WriteField("to_formats", format); err != nil {
			return nil, "", fmt.Errorf("writing form field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// DoclingDocument holds docling-serve output. Content is the docling
// document JSON, passed through unchanged.
type DoclingDocument struct {
	Markdown string
	Content  map[string]any
}

// ExportToMarkdown returns docling's Markdown rendering.
func (d *DoclingDocument) ExportToMarkdown() (string, error) {
	if d.Markdown == "" {
		return "", errors.New("docling-serve returned no markdown content")
	}
	return d.Markdown, nil
}

// ExportToDict returns docling's structured document.
func (d *DoclingDocument) ExportToDict() (map[string]any, error) {
	if d.Content == nil {
		return nil, errors.New("docling-serve returned no json content")
	}
	return d.Content, nil
}
