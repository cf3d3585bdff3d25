package worker

import (
	"FlowSentry/internal/engine/classifier"
	"FlowSentry/internal/engine/parser"
	"FlowSentry/internal/engine/state"
	"FlowSentry/internal/model"
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Worker owns one IP state table and one counter set, and processes a single
// line range sequentially.
type Worker struct {
	rng          model.Range
	classifier   *classifier.Classifier
	table        *state.Table
	counters     model.Counters
	topOffenders int
	verbose      bool

	linesRead int
	malformed int
	dropped   int
}

// Options tunes a worker's reporting.
type Options struct {
	TopOffenders int
	Verbose      bool
}

// New creates a worker for rng.
func New(rng model.Range, c *classifier.Classifier, limits state.Limits, opts Options) *Worker {
	return &Worker{
		rng:          rng,
		classifier:   c,
		table:        state.NewTable(limits),
		topOffenders: opts.TopOffenders,
		verbose:      opts.Verbose,
	}
}

// Run streams the worker's range from src through the parser and classifier.
// Malformed lines are skipped. Any other error aborts the worker.
func (w *Worker) Run(ctx context.Context, src model.LineSource) (model.WorkerResult, error) {
	start := time.Now()

	err := src.ReadRange(ctx, w.rng.Start, w.rng.Count, w.processLine)
	if err != nil {
		return model.WorkerResult{}, fmt.Errorf("worker %d: %w", w.rng.Worker, err)
	}

	return model.WorkerResult{
		Worker:       w.rng.Worker,
		Range:        w.rng,
		Counters:     w.counters,
		LinesRead:    w.linesRead,
		Malformed:    w.malformed,
		Dropped:      w.dropped,
		TrackedIPs:   w.table.Len(),
		Elapsed:      time.Since(start),
		TopOffenders: w.table.TopOffenders(w.topOffenders),
	}, nil
}

func (w *Worker) processLine(lineNo int, line string) error {
	w.linesRead++

	rec, err := parser.ParseRecord(line)
	if err != nil {
		if errors.Is(err, model.ErrMalformedRecord) {
			w.malformed++
			if w.verbose {
				log.Printf("Worker %d: skipping line %d: %v", w.rng.Worker, lineNo+1, err)
			}
			return nil
		}
		return err
	}

	trig, err := w.classifier.Classify(rec, w.table, &w.counters)
	if err != nil {
		return fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	if trig.Dropped {
		w.dropped++
	}
	if w.verbose && trig.Any() {
		log.Printf("Worker %d: line %d from %s triggered backdoor=%t dos=%t recon=%t",
			w.rng.Worker, lineNo+1, rec.SrcIP, trig.Backdoor, trig.DoS, trig.Recon)
	}
	return nil
}

// Table returns the worker's IP state table.
func (w *Worker) Table() *state.Table {
	return w.table
}

// Counters returns the worker's current category counters.
func (w *Worker) Counters() model.Counters {
	return w.counters
}
