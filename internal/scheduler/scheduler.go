// Package scheduler owns the upload work queue and the retry budget.
//
// The scheduler holds the entry table and a channel-backed queue of entry
// keys. A fixed pool of workers drains the queue; a retryable attempt sends
// the key back to the tail until the budget is spent. An entry key is either
// queued, held by exactly one worker, or terminal, so a key is never queued
// twice at the same instant and the channel capacity of one slot per ready
// entry can never block a send.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seqarchive/seqsubmit/internal/common"
	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/models"
)

// Worker executes attempts for one pool slot. One Worker instance is owned
// by one goroutine; the scheduler never shares it.
type Worker interface {
	Execute(ctx context.Context, e *models.FileEntry) models.Outcome
	Requeued(ctx context.Context, e *models.FileEntry)
	Close() error
}

// WorkerFactory builds the Worker for a pool slot. The index is assigned at
// pool construction (0..Threads-1) and keys the worker's log file.
type WorkerFactory func(index int) (Worker, error)

// Options bound the pool and the retry budget.
type Options struct {
	// Threads is the worker pool size.
	Threads int

	// MaxRetries is the number of re-enqueues allowed per entry, so an entry
	// is attempted at most MaxRetries+1 times.
	MaxRetries int

	// RetryPause is a fixed pause before a failed entry goes back to the
	// queue. Not required for correctness; it keeps a flapping endpoint
	// from being hammered by instant retries.
	RetryPause time.Duration
}

// Result is the summary of one finished run.
type Result struct {
	Entries  []models.EntryResult
	Requeues int
	Elapsed  time.Duration
}

type Scheduler struct {
	entries map[string]*models.FileEntry
	queue   chan string
	factory WorkerFactory
	opts    Options
	logger  logging.Logger

	remaining atomic.Int64
	requeues  atomic.Int64

	mu      sync.Mutex
	results map[string]models.EntryResult
}

// New seeds the queue with every ready entry, exactly once each. Entries
// that are not ready are ignored here and must never reach the queue.
// Returns ErrNoReadyEntries when nothing can be uploaded at all.
func New(entries []*models.FileEntry, factory WorkerFactory, opts Options, logger logging.Logger) (*Scheduler, error) {
	if opts.Threads <= 0 {
		opts.Threads = 1
	}

	ready := make([]*models.FileEntry, 0, len(entries))
	for _, e := range entries {
		if e.Ready {
			ready = append(ready, e)
		}
	}
	if len(ready) == 0 {
		return nil, common.ErrNoReadyEntries
	}

	s := &Scheduler{
		entries: make(map[string]*models.FileEntry, len(ready)),
		queue:   make(chan string, len(ready)),
		factory: factory,
		opts:    opts,
		logger:  logger,
		results: make(map[string]models.EntryResult, len(ready)),
	}
	for _, e := range ready {
		s.entries[e.ID] = e
		s.queue <- e.ID
	}
	s.remaining.Store(int64(len(ready)))

	return s, nil
}

// Run drains the queue with Threads workers and blocks until every entry is
// terminal (or ctx is cancelled). Per-entry failures never fail the run;
// the returned error covers only pool-level problems.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.opts.Threads; i++ {
		i := i
		g.Go(func() error {
			return s.worker(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	entries := make([]models.EntryResult, 0, len(s.results))
	for _, r := range s.results {
		entries = append(entries, r)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	return &Result{
		Entries:  entries,
		Requeues: int(s.requeues.Load()),
		Elapsed:  time.Since(start),
	}, nil
}

func (s *Scheduler) worker(ctx context.Context, index int) error {
	w, err := s.factory(index)
	if err != nil {
		return fmt.Errorf("worker %d: %w", index, err)
	}
	defer w.Close()

	for {
		select {
		case id, ok := <-s.queue:
			if !ok {
				return nil
			}
			s.process(ctx, w, s.entries[id])
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// process runs one attempt and applies the retry policy. While the entry is
// here it is in flight: it is in no queue and no other worker can see it.
func (s *Scheduler) process(ctx context.Context, w Worker, e *models.FileEntry) {
	outcome := w.Execute(ctx, e)

	if outcome.Terminal() {
		s.finish(ctx, e, outcome)
		return
	}

	if e.Attempts > s.opts.MaxRetries {
		s.logger.Warn(ctx, "retry budget exhausted",
			"entry", e.ID, "attempts", e.Attempts)
		s.finish(ctx, e, models.OutcomeMaxRetries)
		return
	}

	w.Requeued(ctx, e)
	s.requeues.Add(1)
	s.logger.Info(ctx, "re-queueing entry",
		"entry", e.ID, "attempt", e.Attempts, "outcome", outcome)

	if s.opts.RetryPause > 0 {
		select {
		case <-time.After(s.opts.RetryPause):
		case <-ctx.Done():
		}
	}

	// Safe even against queue close: the queue only closes when remaining
	// hits zero, and this entry still counts until finish runs.
	s.queue <- e.ID
}

func (s *Scheduler) finish(ctx context.Context, e *models.FileEntry, outcome models.Outcome) {
	s.mu.Lock()
	s.results[e.ID] = models.EntryResult{
		ID:          e.ID,
		SubmitterID: e.SubmitterID,
		ResolvedDir: e.ResolvedDir,
		Outcome:     outcome,
		Attempts:    e.Attempts,
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "entry terminal",
		"entry", e.ID, "outcome", outcome, "attempts", e.Attempts)

	if s.remaining.Add(-1) == 0 {
		close(s.queue)
	}
}
