// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docbatch/pkg/types"
)

// run holds the per-batch state shared read-only by every task.
type run struct {
	proc     *Processor
	log      *zap.Logger
	metadata types.BatchMetadata
}

// dispatch executes tasks on a pool of at most maxWorkers goroutines and
// sends each outcome on out, closing it when every task has finished.
// Tasks are submitted in waves of batchSize; a wave drains before the next
// one starts.
func (r *run) dispatch(ctx context.Context, tasks []types.ConversionTask, out chan<- types.ConversionOutcome) {
	defer close(out)
	size := r.proc.batchSize
	for start := 0; start < len(tasks); start += size {
		wave := tasks[start:min(start+size, len(tasks))]
		var g errgroup.Group
		g.SetLimit(r.proc.maxWorkers)
		for _, t := range wave {
			t := t
			g.Go(func() error {
				out <- r.execute(ctx, t)
				return nil
			})
		}
		_ = g.Wait()
	}
}

// execute runs the single-file procedure for t. It never panics and never
// returns an error; everything is folded into the outcome.
func (r *run) execute(ctx context.Context, t types.ConversionTask) types.ConversionOutcome {
	o := types.ConversionOutcome{Task: t, State: types.TaskFailed}
	log := r.log.With(zap.String("file", t.SourcePath))

	if err := ctx.Err(); err != nil {
		o.Err = fmt.Errorf("not started: %w", err)
		log.Warn("skipped", zap.Error(o.Err))
		return o
	}

	start := r.proc.now()
	err := r.convert(ctx, t)
	o.Duration = r.proc.now().Sub(start)
	if err != nil {
		o.Err = err
		log.Error("conversion failed", zap.Error(err), zap.Duration("duration", o.Duration))
		return o
	}

	o.State = types.TaskSucceeded
	log.Info("converted", zap.String("output", t.OutputPath), zap.Duration("duration", o.Duration))
	return o
}

// convert calls the converter, renders the document and writes it.
// Panics from the converter or the document are returned as errors.
func (r *run) convert(ctx context.Context, t types.ConversionTask) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("converter panicked: %v", p)
		}
	}()

	res, err := r.proc.conv.Convert(ctx, t.SourcePath)
	if err != nil {
		return fmt.Errorf("converting: %w", err)
	}
	if res == nil || res.Document == nil {
		return errors.New("converting: converter returned no document")
	}

	meta := fileMetadata(filepath.Base(t.SourcePath), r.proc.now(), r.metadata)
	data, err := render(res.Document, t.Format, meta)
	if err != nil {
		return err
	}
	return writeAtomic(t.OutputPath, data)
}
