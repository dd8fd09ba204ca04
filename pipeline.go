package luhn

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultQueueCapacity is the number of pending results a pipeline buffers
// before the producer stops reading input.
const DefaultQueueCapacity = 20

// DefaultWorkers returns half the available parallelism, at least one.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		return 1
	}
	return n
}

// State is the lifecycle stage of a pipeline run.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stats summarizes the most recent run.
type Stats struct {
	Lines        int // lines written to the sink
	MaskedDigits int // digits replaced with MaskChar
	MaxPending   int // high-water mark of queued result handles
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the worker pool size. Values below one select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = DefaultWorkers()
		}
		p.workers = n
	}
}

// WithQueueCapacity bounds the number of results waiting to be written.
// Values below one select DefaultQueueCapacity.
func WithQueueCapacity(c int) Option {
	return func(p *Pipeline) {
		if c < 1 {
			c = DefaultQueueCapacity
		}
		p.queueCapacity = c
	}
}

// Pipeline masks a stream of lines on a worker pool while writing results in
// input order.
//
// A single producer reads lines, hands each to a worker, and queues a handle
// for the pending result on a bounded FIFO. A single consumer takes handles
// from the head of the queue, waits for each result and writes it. Because
// the queue preserves submission order, completion order never leaks into the
// output. When the queue is full the producer blocks before reading more
// input.
//
// A Pipeline may be run again once a run has finished. Concurrent runs on
// the same Pipeline are rejected.
type Pipeline struct {
	workers       int
	queueCapacity int

	state        atomic.Int32
	lines        atomic.Int64
	maskedDigits atomic.Int64
	maxPending   atomic.Int64

	// mask is swapped in tests to inject worker faults.
	mask func(s *Scanner, buf []byte) int
}

// NewPipeline creates a pipeline with DefaultWorkers and DefaultQueueCapacity
// unless overridden by opts.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		workers:       DefaultWorkers(),
		queueCapacity: DefaultQueueCapacity,
		mask:          (*Scanner).MaskBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured pool size.
func (p *Pipeline) Workers() int { return p.workers }

// QueueCapacity returns the configured queue bound.
func (p *Pipeline) QueueCapacity() int { return p.queueCapacity }

// State returns the current lifecycle stage.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Stats returns counters for the current or most recent run.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Lines:        int(p.lines.Load()),
		MaskedDigits: int(p.maskedDigits.Load()),
		MaxPending:   int(p.maxPending.Load()),
	}
}

// result is the outcome of masking one line.
type result struct {
	line   []byte
	masked int
	err    error
}

// handle is a pending result. done receives exactly one value.
type handle struct {
	index int
	done  chan result
}

// endOfInput is queued after the last real handle.
var endOfInput = &handle{index: -1}

type task struct {
	line string
	h    *handle
}

// Run processes src on the worker pool and writes every line to sink in
// input order. It returns the first read, write or task failure, or the
// context error if ctx is cancelled first. No line is written after a
// failure.
func (p *Pipeline) Run(ctx context.Context, src LineSource, sink LineSink) (err error) {
	if err := p.begin(); err != nil {
		return err
	}
	start := time.Now()
	emitPipelineStart(ctx, ModeParallel, p.workers, p.queueCapacity)
	defer func() {
		p.state.Store(int32(StateDone))
		stats := p.Stats()
		emitPipelineComplete(ctx, ModeParallel, stats.Lines, stats.MaskedDigits, time.Since(start), err)
	}()

	g, gctx := errgroup.WithContext(ctx)
	tasks := make(chan task)
	pending := make(chan *handle, p.queueCapacity)

	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			scanner := NewScanner()
			for t := range tasks {
				t.h.done <- p.process(scanner, t.h.index, t.line)
			}
			return nil
		})
	}

	// Producer.
	g.Go(func() error {
		defer close(tasks)
		for index := 0; ; index++ {
			line, ok, err := src.Next()
			if err != nil {
				return newPipelineError(ErrRead, index, err)
			}
			if !ok {
				break
			}

			h := &handle{index: index, done: make(chan result, 1)}
			select {
			case tasks <- task{line: line, h: h}:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case pending <- h:
			case <-gctx.Done():
				return gctx.Err()
			}
			p.observePending(int64(len(pending)))
		}

		select {
		case pending <- endOfInput:
		case <-gctx.Done():
			return gctx.Err()
		}
		p.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
		return nil
	})

	// Consumer.
	g.Go(func() error {
		for {
			var h *handle
			select {
			case h = <-pending:
			case <-gctx.Done():
				return gctx.Err()
			}
			if h == endOfInput {
				return nil
			}

			var r result
			select {
			case r = <-h.done:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err := p.emit(gctx, sink, h.index, r); err != nil {
				return err
			}
		}
	})

	return g.Wait()
}

// RunSerial processes src on the calling goroutine with a single scanner.
// Output and error behavior match Run.
func (p *Pipeline) RunSerial(ctx context.Context, src LineSource, sink LineSink) (err error) {
	if err := p.begin(); err != nil {
		return err
	}
	start := time.Now()
	emitPipelineStart(ctx, ModeSerial, 1, 0)
	defer func() {
		p.state.Store(int32(StateDone))
		stats := p.Stats()
		emitPipelineComplete(ctx, ModeSerial, stats.Lines, stats.MaskedDigits, time.Since(start), err)
	}()

	scanner := NewScanner()
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok, err := src.Next()
		if err != nil {
			return newPipelineError(ErrRead, index, err)
		}
		if !ok {
			break
		}
		if err := p.emit(ctx, sink, index, p.process(scanner, index, line)); err != nil {
			return err
		}
	}
	p.state.Store(int32(StateDraining))
	return nil
}

// begin moves an idle or finished pipeline into the running state and clears
// the counters.
func (p *Pipeline) begin() error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!p.state.CompareAndSwap(int32(StateDone), int32(StateRunning)) {
		return newConfigError(ErrInvalidConfig, "state", p.State().String())
	}
	p.lines.Store(0)
	p.maskedDigits.Store(0)
	p.maxPending.Store(0)
	return nil
}

// process masks one line. A panic inside the scanner resolves the line with
// ErrTask instead of leaving its handle pending.
func (p *Pipeline) process(scanner *Scanner, index int, line string) (r result) {
	defer func() {
		if v := recover(); v != nil {
			r = result{err: newPipelineError(ErrTask, index, fmt.Errorf("panic: %v", v))}
		}
	}()
	buf := []byte(line)
	masked := p.mask(scanner, buf)
	return result{line: buf, masked: masked}
}

// emit writes a resolved line or reports its failure.
func (p *Pipeline) emit(ctx context.Context, sink LineSink, index int, r result) error {
	if r.err != nil {
		emitLineFailed(ctx, index, r.err)
		return r.err
	}
	if err := sink.WriteLine(r.line); err != nil {
		err = newPipelineError(ErrWrite, index, err)
		emitLineFailed(ctx, index, err)
		return err
	}
	p.lines.Add(1)
	p.maskedDigits.Add(int64(r.masked))
	return nil
}

func (p *Pipeline) observePending(n int64) {
	for {
		cur := p.maxPending.Load()
		if n <= cur || p.maxPending.CompareAndSwap(cur, n) {
			return
		}
	}
}
