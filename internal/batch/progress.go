// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ProgressFunc is called once per completed task with the number of tasks
// processed so far and the batch total.
type ProgressFunc func(processed, total int)

// progress tracks completed tasks. It is owned by the aggregating goroutine
// and must not be shared with workers.
type progress struct {
	total int
	done  int
	bar   *progressbar.ProgressBar
	cb    ProgressFunc
	log   *zap.Logger
}

func newProgress(total int, w io.Writer, cb ProgressFunc, log *zap.Logger) *progress {
	p := &progress{total: total, cb: cb, log: log}
	if w != nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
	}
	return p
}

// step records one completed task, whatever its outcome.
func (p *progress) step() {
	p.done++
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
	p.log.Debug("progress", zap.Int("processed", p.done), zap.Int("total", p.total))
	p.notify()
}

// notify calls the callback. A panicking callback is logged and the batch
// carries on.
func (p *progress) notify() {
	if p.cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("progress callback panicked",
				zap.Any("panic", r), zap.Int("processed", p.done), zap.Int("total", p.total))
		}
	}()
	p.cb(p.done, p.total)
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
