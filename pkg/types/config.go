package types

import (
	"fmt"
	"strings"
	"time"
)

// ExportFormat selects the serialization written for each converted document.
// The format name doubles as the output file extension.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
)

// ExportFormats lists the recognized export formats in display order.
var ExportFormats = []ExportFormat{FormatJSON, FormatMarkdown}

// Valid reports whether f is one of the recognized export formats.
func (f ExportFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatMarkdown:
		return true
	}
	return false
}

// Ext returns the output file extension for f, including the leading dot.
func (f ExportFormat) Ext() string {
	return "." + string(f)
}

// ParseExportFormat converts s into an ExportFormat. Matching is exact;
// surrounding whitespace is trimmed but case is not folded.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.TrimSpace(s))
	if !f.Valid() {
		return "", fmt.Errorf("unsupported export format %q (valid formats: %s)", s, formatList())
	}
	return f, nil
}

func formatList() string {
	names := make([]string, len(ExportFormats))
	for i, f := range ExportFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ConverterBackend identifies the document conversion engine behind the
// Converter adapter.
type ConverterBackend string

const (
	BackendMarkitdown   ConverterBackend = "markitdown"
	BackendPdftext      ConverterBackend = "pdftext"
	BackendDoclingServe ConverterBackend = "docling-serve"
)

// ConverterBackends lists the available backends in display order.
var ConverterBackends = []ConverterBackend{BackendMarkitdown, BackendPdftext, BackendDoclingServe}

// ConverterConfig holds settings for constructing the Converter adapter.
type ConverterConfig struct {
	// Backend selects the conversion engine.
	Backend ConverterBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the markitdown backend
	// (default "markitdown:latest").
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// ServerURL is the base URL of a docling-serve instance
	// (e.g. "http://localhost:5001").
	ServerURL string `json:"server_url" yaml:"server_url" mapstructure:"server_url"`

	// APIKey is sent as X-Api-Key to docling-serve when set.
	APIKey string `json:"-" yaml:"api_key" mapstructure:"api_key"`

	// Timeout bounds a single HTTP conversion request for network backends.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// BatchConfig holds settings for one batch conversion run.
type BatchConfig struct {
	// InputDir is the directory scanned (non-recursively) for documents.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`

	// OutputDir receives one output file per converted document. It is
	// created, including parents, when absent.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Pattern is the shell-style glob matched against file names (default "*.pdf").
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`

	// Format selects the output serialization (default json).
	Format ExportFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Parallel enables the worker pool.
	Parallel bool `json:"parallel" yaml:"parallel" mapstructure:"parallel"`

	// BatchSize is the number of tasks submitted to the pool per wave (default 10).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// MaxWorkers caps concurrent conversions. Zero selects a platform default.
	MaxWorkers int `json:"max_workers" yaml:"max_workers" mapstructure:"max_workers"`

	// Progress enables the terminal progress bar.
	Progress bool `json:"progress" yaml:"progress" mapstructure:"progress"`

	// Metadata is merged into every JSON output's metadata block.
	Metadata BatchMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty" mapstructure:"metadata"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Encoding is "console" or "json".
	Encoding string `json:"encoding" yaml:"encoding" mapstructure:"encoding"`

	// File is an optional rotating log file path. Empty disables file logging.
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the age after which rotated files are removed.
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
}

// Config groups all docbatch settings.
type Config struct {
	Batch     BatchConfig     `json:"convert" yaml:"convert" mapstructure:"convert"`
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
