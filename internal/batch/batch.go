// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch converts every matching document in a directory through a
// convert.Converter and writes one JSON or Markdown file per document.
// Documents run sequentially or on a bounded worker pool; a failed document
// is recorded and never stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/pkg/types"
)

const (
	// DefaultPattern is used when a request names no pattern.
	DefaultPattern = "*.pdf"

	// DefaultBatchSize is the number of tasks submitted per wave.
	DefaultBatchSize = 10

	maxDefaultWorkers = 32
)

// DefaultMaxWorkers returns the worker count used when none is configured:
// the number of CPUs, capped at 32.
func DefaultMaxWorkers() int {
	return min(runtime.NumCPU(), maxDefaultWorkers)
}

// Request describes one directory conversion.
type Request struct {
	InputDir  string
	OutputDir string

	// Pattern is a glob matched against base names. Empty means DefaultPattern.
	Pattern string

	Format   types.ExportFormat
	Metadata types.BatchMetadata
	Parallel bool
}

// Result summarizes a batch. Succeeded+Failed always equals the number of
// matched files.
type Result struct {
	RunID     string
	Succeeded int
	Failed    int

	// Outcomes holds one entry per task in completion order.
	Outcomes []types.ConversionOutcome
}

// Counts returns the success and failure counts.
func (r Result) Counts() (succeeded, failed int) {
	return r.Succeeded, r.Failed
}

// Total returns the number of tasks in the batch.
func (r Result) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any document failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Failures returns the failed outcomes.
func (r Result) Failures() []types.ConversionOutcome {
	var out []types.ConversionOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			out = append(out, o)
		}
	}
	return out
}

func (r *Result) record(o types.ConversionOutcome) {
	if o.Succeeded() {
		r.Succeeded++
	} else {
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Processor runs batches against one Converter. The converter is shared by
// all workers and must be safe for concurrent use.
type Processor struct {
	conv       convert.Converter
	batchSize  int
	maxWorkers int
	callback   ProgressFunc
	progressW  io.Writer
	log        *zap.Logger
	now        func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithBatchSize sets how many tasks are submitted to the pool per wave.
// Values below one select DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(p *Processor) { p.batchSize = n }
}

// WithMaxWorkers caps concurrent conversions. Values below one select
// DefaultMaxWorkers.
func WithMaxWorkers(n int) Option {
	return func(p *Processor) { p.maxWorkers = n }
}

// WithProgressCallback registers fn to be called after every task.
func WithProgressCallback(fn ProgressFunc) Option {
	return func(p *Processor) { p.callback = fn }
}

// WithProgressWriter draws a progress bar on w. A nil writer disables it.
func WithProgressWriter(w io.Writer) Option {
	return func(p *Processor) { p.progressW = w }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithClock overrides the time source used for extraction dates.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor returns a Processor that converts documents with conv.
func NewProcessor(conv convert.Converter, opts ...Option) *Processor {
	p := &Processor{conv: conv, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.batchSize < 1 {
		p.batchSize = DefaultBatchSize
	}
	if p.maxWorkers < 1 {
		p.maxWorkers = DefaultMaxWorkers()
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// ProcessDirectory converts every file in req.InputDir matching req.Pattern
// and writes the results to req.OutputDir.
//
// The request is validated before any document is touched: an unknown format
// or malformed pattern fails without I/O, a missing input directory fails
// before the output directory is created, and an output directory that cannot
// be created fails with ErrOutputUnavailable. After that, per-document errors
// only show up in the Result.
//
// If ctx is cancelled mid-run, tasks that had not started are recorded as
// failed and ctx.Err() is returned alongside the complete Result.
func (p *Processor) ProcessDirectory(ctx context.Context, req Request) (Result, error) {
	if !req.Format.Valid() {
		return Result{}, fmt.Errorf("%w %q (valid formats: %s, %s)",
			ErrUnsupportedFormat, req.Format, types.FormatJSON, types.FormatMarkdown)
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return Result{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	info, err := os.Stat(req.InputDir)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrInputNotFound, req.InputDir, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, req.InputDir)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrOutputUnavailable, req.OutputDir, err)
	}

	sources, err := Discover(req.InputDir, pattern)
	if err != nil {
		return Result{}, err
	}

	result := Result{RunID: uuid.NewString()}
	log := p.log.With(zap.String("run_id", result.RunID))
	mode := "sequential"
	if req.Parallel && len(sources) > 1 {
		mode = "concurrent"
	}
	log.Info("discovered files",
		zap.String("input_dir", req.InputDir),
		zap.String("pattern", pattern),
		zap.Int("count", len(sources)),
		zap.String("format", string(req.Format)),
		zap.String("mode", mode))
	if len(sources) == 0 {
		return result, nil
	}

	r := &run{
		proc:     p,
		log:      log,
		metadata: freezeMetadata(req.Metadata, log),
	}
	tasks := buildTasks(sources, req.OutputDir, req.Format)
	prog := newProgress(len(tasks), p.progressW, p.callback, log)

	start := p.now()
	if mode == "concurrent" {
		outcomes := make(chan types.ConversionOutcome)
		go r.dispatch(ctx, tasks, outcomes)
		for o := range outcomes {
			result.record(o)
			prog.step()
		}
	} else {
		for _, t := range tasks {
			result.record(r.execute(ctx, t))
			prog.step()
		}
	}
	prog.finish()

	log.Info("batch complete",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("total", result.Total()),
		zap.Duration("elapsed", p.now().Sub(start)))

	return result, ctx.Err()
}
