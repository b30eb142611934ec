// Package process runs the streaming aggregation over one ledger file.
//
// A run is attempted exactly once and always yields a pair of
// mappings:
//
//	sizing failure  -> empty mappings
//	mid-stream failure -> whatever accumulated before the failure
//	clean completion   -> complete mappings
//
// Failures never escape to the caller as a returned error; they are
// carried on Result.Err so the caller can report them while still
// using the (possibly partial) totals. The run is not transactional
// and does not roll back on failure.
package process

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/salescan/salescan/internal/model"
	"github.com/salescan/salescan/pkg/aggregate"
	sserrors "github.com/salescan/salescan/pkg/errors"
	"github.com/salescan/salescan/pkg/hooks"
	"github.com/salescan/salescan/pkg/meter"
	"github.com/salescan/salescan/pkg/parser"
	"github.com/salescan/salescan/pkg/util"
)

// SinkFactory builds a progress sink once the total expected size is
// known. It is never invoked when sizing fails.
type SinkFactory func(total int64) meter.Sink

// Options configures a Processor.
type Options struct {
	// BufferSize is the parser read-ahead buffer in bytes.
	BufferSize int

	// NewSink builds the progress sink for a run. Nil disables
	// progress reporting.
	NewSink SinkFactory

	// ChannelDepth bounds the parse/aggregate handoff channel.
	// Zero selects a sensible default.
	ChannelDepth int

	// DefaultCategory names the bucket for uncategorized items.
	// Empty selects model.DefaultCategory.
	DefaultCategory string
}

// Result is the outcome of one run.
// Counts and Sales are never nil and always share an identical key set.
type Result struct {
	RunID uuid.UUID
	Path  string

	Counts map[string]int
	Sales  map[string]float64

	Accepted   int64
	Duplicates int64
	Unkeyed    int64
	BytesRead  int64
	Duration   time.Duration

	// Err is the reported sizing or stream failure, nil on clean
	// completion. When set, the mappings hold the partial (possibly
	// empty) state accumulated before the failure.
	Err error
}

// Processor executes runs over ledger files.
type Processor struct {
	opts  Options
	hooks *hooks.HookManager
}

// New creates a processor.
func New(opts Options) *Processor {
	if opts.ChannelDepth <= 0 {
		opts.ChannelDepth = 256
	}
	return &Processor{
		opts:  opts,
		hooks: hooks.NewHookManager(),
	}
}

// Hooks exposes the hook manager for registration.
func (p *Processor) Hooks() *hooks.HookManager {
	return p.hooks
}

// countingSink forwards deltas downstream while keeping a running
// total for the Result. Only the parser goroutine writes to it.
type countingSink struct {
	inner meter.Sink
	total int64
}

func (s *countingSink) Add64(n int64) error {
	s.total += n
	return s.inner.Add64(n)
}

// Run processes one ledger file. See the package comment for the
// failure policy; the returned Result is never nil.
func (p *Processor) Run(ctx context.Context, path string) *Result {
	res := &Result{
		RunID:  uuid.New(),
		Path:   path,
		Counts: make(map[string]int),
		Sales:  make(map[string]float64),
	}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	// Sizing stage. Failure here aborts before the file is opened.
	size, err := util.FileSize(path)
	if err != nil {
		res.Err = sserrors.SizeUnknown(path, err)
		_ = p.hooks.RunError(ctx, res.Err, "sizing")
		return res
	}

	info := &hooks.SourceInfo{
		Path:      path,
		Format:    util.BaseFormat(path),
		SizeBytes: size,
	}
	ctx, err = p.hooks.RunPreRun(ctx, info)
	if err != nil {
		res.Err = sserrors.Wrap(err, sserrors.CodeFilePermission, "pre-run hook rejected input").
			WithContext("path", path)
		return res
	}

	f, err := os.Open(path)
	if err != nil {
		res.Err = sserrors.Wrap(err, sserrors.CodeFileNotFound, "opening ledger").
			WithContext("path", path)
		_ = p.hooks.RunError(ctx, res.Err, "open")
		return res
	}
	defer f.Close()

	// The sink is started only after sizing succeeded.
	var sink meter.Sink = meter.Discard
	if p.opts.NewSink != nil {
		sink = p.opts.NewSink(size)
	}
	counting := &countingSink{inner: sink}
	defer func() { res.BytesRead = counting.total }()

	// The meter wraps the raw file, so for compressed ledgers the
	// progress tracks on-disk bytes against the stat'ed size.
	metered := meter.NewReader(f, counting)
	src, cleanup, err := util.Decompress(metered, path)
	if err != nil {
		res.Err = sserrors.Wrap(err, sserrors.CodeReadFailed, "opening compressed ledger").
			WithContext("path", path)
		_ = p.hooks.RunError(ctx, res.Err, "open")
		return res
	}
	defer cleanup()

	agg := aggregate.NewWithDefault(p.opts.DefaultCategory)
	jp := parser.NewJSONArrayParser(parser.Config{BufferSize: p.opts.BufferSize})
	out := make(chan *model.Item, p.opts.ChannelDepth)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(out)
		return jp.Parse(gctx, src, out)
	})
	g.Go(func() error {
		for item := range out {
			agg.Add(item)
			jp.Recycle(item)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		res.Err = p.asStreamError(err)
		_ = p.hooks.RunError(ctx, res.Err, "streaming")
	}
	finishSink(sink, res.Err == nil)

	res.Counts = agg.Counts()
	res.Sales = agg.Sales()
	res.Accepted = agg.Accepted()
	res.Duplicates = agg.Duplicates()
	res.Unkeyed = agg.Unkeyed()

	_ = p.hooks.RunPostRun(ctx, &hooks.RunInfo{
		Path:       path,
		BytesRead:  counting.total,
		Accepted:   res.Accepted,
		Duplicates: res.Duplicates,
		Unkeyed:    res.Unkeyed,
		Categories: len(res.Counts),
		Duration:   int64(time.Since(start)),
		Failed:     res.Err != nil,
	})

	return res
}

// asStreamError classifies a mid-stream failure.
func (p *Processor) asStreamError(err error) error {
	if sserrors.IsStream(err) {
		return err
	}
	if err == parser.ErrContextCanceled {
		return sserrors.Wrap(err, sserrors.CodeContextCanceled, "run canceled")
	}
	return sserrors.Wrap(err, sserrors.CodeReadFailed, "reading ledger")
}

// finishSink completes or abandons the progress display, depending on
// whether the run finished cleanly.
func finishSink(sink meter.Sink, clean bool) {
	if clean {
		if f, ok := sink.(interface{ Finish() error }); ok {
			_ = f.Finish()
		}
		return
	}
	if e, ok := sink.(interface{ Exit() error }); ok {
		_ = e.Exit()
	}
}
