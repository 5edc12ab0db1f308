// Package processor runs the stylization pipeline over a batch of files.
//
// Every WorkItem yields exactly one Result, in input order. A failing item
// never stops the batch; only configuration errors detected before the
// first item is dispatched make Run return an error.
package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"oniazusa/internal/logging"
	"oniazusa/internal/raster"
	"oniazusa/internal/style"
	"oniazusa/internal/stylize"
)

type runner struct {
	pipeline    *stylize.Pipeline
	fingerprint string
	text        []TextEntry
	opts        Options
	decoder     Decoder
	writer      Writer
	log         *logrus.Logger
	updates     chan<- ProgressUpdate
}

// Run stylizes items with profile using a bounded worker pool.
//
// Cancelling ctx stops dispatch: items already running finish normally and
// the rest are reported as KindCanceled failures. updates, when non-nil,
// receives progress deltas; Run never closes it.
func Run(ctx context.Context, items []WorkItem, profile *style.Profile, opts Options, updates chan<- ProgressUpdate) (Report, error) {
	pipeline, err := stylize.New(profile)
	if err != nil {
		return Report{}, err
	}

	r := &runner{
		pipeline:    pipeline,
		fingerprint: profile.Fingerprint(),
		opts:        opts,
		decoder:     opts.Decoder,
		writer:      opts.Writer,
		log:         opts.Logger,
		updates:     updates,
	}
	r.text = []TextEntry{
		{Key: TextSoftware, Value: "oniazusa"},
		{Key: TextProfile, Value: r.fingerprint},
		{Key: TextParams, Value: profile.String()},
	}
	if r.decoder == nil {
		r.decoder = FileDecoder{}
	}
	if r.writer == nil {
		r.writer = PNGWriter{}
	}
	if r.log == nil {
		r.log = logging.Discard()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	r.send(ProgressUpdate{TotalDelta: len(items)})
	r.log.WithFields(logrus.Fields{
		"items":   len(items),
		"workers": workers,
		"profile": r.fingerprint,
	}).Debug("batch started")

	results := make([]Result, len(items))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	next := 0
	for ; next < len(items); next++ {
		if ctx.Err() != nil {
			break
		}
		i, item := next, items[next]
		g.Go(func() error {
			results[i] = r.process(ctx, item)
			r.progress(results[i])
			return nil
		})
	}
	_ = g.Wait() // failures are recorded per Result

	for ; next < len(items); next++ {
		results[next] = r.fail(Result{Item: items[next]}, ErrCanceled)
		r.progress(results[next])
	}

	report := Report{Results: results, Summary: summarize(results)}
	r.log.WithFields(logrus.Fields{
		"succeeded": report.Summary.Succeeded,
		"failed":    report.Summary.Failed,
		"skipped":   report.Summary.Skipped,
	}).Info("batch finished")
	return report, nil
}

// process handles one item. The pipeline runs under a context that ignores
// batch cancellation, so an item that has started always completes unless
// its own timeout expires. A timed-out item keeps its worker slot until the
// render notices the deadline at the next stage boundary.
func (r *runner) process(ctx context.Context, item WorkItem) Result {
	res := Result{Item: item}
	if ctx.Err() != nil {
		return r.fail(res, ErrCanceled)
	}
	r.send(ProgressUpdate{Current: item.Display})

	if r.opts.SkipExisting && r.upToDate(item.Destination) {
		res.Status = StatusSkipped
		r.log.WithField("source", item.Source).Debug("output up to date, skipped")
		return res
	}

	itemCtx := context.WithoutCancel(ctx)
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(itemCtx, r.opts.Timeout)
		defer cancel()
	}

	out, err := r.render(itemCtx, item)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(itemCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, r.opts.Timeout)
		}
		return r.fail(res, err)
	}

	res.Status = StatusSuccess
	if r.opts.KeepOutput {
		res.Image = out
	}
	r.log.WithFields(logrus.Fields{
		"source":      item.Source,
		"destination": item.Destination,
	}).Debug("stylized")
	return res
}

// render decodes, stylizes and writes one item. ctx is checked after each
// step so nothing is written once the deadline has passed.
func (r *runner) render(ctx context.Context, item WorkItem) (*raster.Image, error) {
	img, err := r.decoder.Decode(item.Source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := r.pipeline.Run(ctx, img)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.writer.Write(item.Destination, out, r.text); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runner) fail(res Result, err error) Result {
	res.Status = StatusFailure
	res.Err = err
	res.Kind = Classify(err)
	res.Stage = stylize.StageOf(err)
	if errors.Is(err, ErrCanceled) {
		return res
	}
	r.log.WithFields(logrus.Fields{
		"source": res.Item.Source,
		"stage":  res.Stage,
		"kind":   res.Kind,
	}).Warn(err.Error())
	return res
}

func (r *runner) upToDate(dest string) bool {
	text, err := readPNGTextFile(dest)
	if err != nil {
		return false
	}
	return text[TextProfile] == r.fingerprint
}

func (r *runner) progress(res Result) {
	switch res.Status {
	case StatusSuccess:
		r.send(ProgressUpdate{ProcessedDelta: 1})
	case StatusSkipped:
		r.send(ProgressUpdate{ProcessedDelta: 1, SkippedDelta: 1})
	default:
		r.send(ProgressUpdate{ProcessedDelta: 1, ErrorDelta: 1})
	}
}

func (r *runner) send(u ProgressUpdate) {
	if r.updates != nil {
		r.updates <- u
	}
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	return s
}
