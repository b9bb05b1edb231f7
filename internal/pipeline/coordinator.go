package pipeline

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/docgrep/internal/match"
	"github.com/dgallion1/docgrep/internal/segment"
	"github.com/dgallion1/docgrep/internal/source"
	"golang.org/x/sync/errgroup"
)

// RunMatch is one matching run and its context windows.
type RunMatch struct {
	Text    string           `json:"text"`
	Triples []segment.Triple `json:"triples,omitempty"`
}

// Result is the outcome of searching one source.
type Result struct {
	Source   string
	Runs     []RunMatch
	Err      error
	Duration time.Duration
	Bytes    int // size of the decoded input
}

// Sink receives results. Report is never called concurrently by a
// Coordinator.
type Sink interface {
	Report(Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result)

func (f SinkFunc) Report(r Result) { f(r) }

// Options configures a Coordinator.
type Options struct {
	Workers       int
	ContextLength int  // negative means unbounded
	Quiet         bool // skip segmentation
}

// Summary aggregates one Run.
type Summary struct {
	Sources int           `json:"sources"`
	Matched int           `json:"matched"`
	Failed  int           `json:"failed"`
	Runs    int           `json:"runs"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Coordinator searches sources on a bounded pool of goroutines and hands
// each result to a Sink under a single lock, so one source's report is never
// interleaved with another's. Report order across sources is completion
// order.
type Coordinator struct {
	ex    *match.Extractor
	sink  Sink
	log   *slog.Logger
	opts  Options
	stats *SourceStats

	emitMu sync.Mutex
}

func NewCoordinator(ex *match.Extractor, sink Sink, log *slog.Logger, opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Coordinator{ex: ex, sink: sink, log: log, opts: opts}
}

// WithStats records per-source durations into stats.
func (c *Coordinator) WithStats(stats *SourceStats) *Coordinator {
	c.stats = stats
	return c
}

// Run processes every source to completion. A failing source never stops
// the others; there is no cancellation.
func (c *Coordinator) Run(sources []source.Source) Summary {
	start := time.Now()
	var matched, failed, runs atomic.Int64

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for _, src := range sources {
		g.Go(func() error {
			res := c.process(src)
			switch OutcomeOf(res) {
			case OutcomeFailed:
				failed.Add(1)
			case OutcomeMatched:
				matched.Add(1)
				runs.Add(int64(len(res.Runs)))
			}
			c.Emit(res)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{
		Sources: len(sources),
		Matched: int(matched.Load()),
		Failed:  int(failed.Load()),
		Runs:    int(runs.Load()),
		Elapsed: time.Since(start),
	}
	c.log.Debug("search complete",
		"sources", sum.Sources,
		"matched", sum.Matched,
		"failed", sum.Failed,
		"duration_ms", sum.Elapsed.Milliseconds(),
	)
	return sum
}

// Emit hands r to the sink while holding the output lock. It is also used
// for failures found before dispatch, such as unreadable archives.
func (c *Coordinator) Emit(r Result) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.sink.Report(r)
}

func (c *Coordinator) process(src source.Source) (res Result) {
	start := time.Now()
	res.Source = src.Label()
	log := c.log.With("source", res.Source)
	defer func() {
		if p := recover(); p != nil {
			res.Runs = nil
			res.Err = fmt.Errorf("panic while searching: %v", p)
			log.Error("search panicked", "panic", p)
		}
		res.Duration = time.Since(start)
		if c.stats != nil {
			c.stats.Record(res)
		}
	}()

	data, err := src.Bytes()
	if err != nil {
		log.Debug("read failed", "error", err)
		res.Err = err
		return res
	}
	res.Bytes = len(data)

	texts, err := c.ex.Extract(data, src.Filename())
	if err != nil {
		log.Debug("extract failed", "error", err)
		res.Err = err
		return res
	}

	res.Runs = make([]RunMatch, 0, len(texts))
	for _, text := range texts {
		rm := RunMatch{Text: text}
		if !c.opts.Quiet {
			rm.Triples = segment.Segment(text, c.ex.Pattern(), c.opts.ContextLength)
		}
		res.Runs = append(res.Runs, rm)
	}
	log.Debug("searched", "runs", len(res.Runs), "bytes", len(data))
	return res
}
