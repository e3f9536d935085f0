// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TaskState is the final state of a single conversion task.
type TaskState string

const (
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// BatchMetadata holds caller-supplied values merged into each JSON output's
// metadata block. Values should be scalars or strings.
type BatchMetadata map[string]any

// Metadata keys set per file. Caller metadata never overrides them.
const (
	MetaSourceFile     = "source_file"
	MetaExtractionDate = "extraction_date"
)

// ConversionTask is the unit of work: convert SourcePath into OutputPath
// using Format. Tasks are created once per discovered file and not modified.
type ConversionTask struct {
	// Index is the position of the task in discovery order.
	Index int `json:"index" yaml:"index"`

	// SourcePath is the input document.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// OutputPath is where the serialized document is written.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Format is the serialization written to OutputPath.
	Format ExportFormat `json:"format" yaml:"format"`
}

// ConversionOutcome is the terminal result of one task.
type ConversionOutcome struct {
	Task ConversionTask `json:"task" yaml:"task"`

	// State is TaskSucceeded or TaskFailed.
	State TaskState `json:"state" yaml:"state"`

	// Err describes the failure. Nil when State is TaskSucceeded.
	Err error `json:"-" yaml:"-"`

	// Duration is the wall time spent converting and writing.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Succeeded reports whether the task produced its output file.
func (o ConversionOutcome) Succeeded() bool {
	return o.State == TaskSucceeded
}
