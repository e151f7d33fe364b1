// Package executor runs one upload attempt for one entry and records it.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/seqarchive/seqsubmit/internal/classify"
	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/models"
	"github.com/seqarchive/seqsubmit/internal/transfer"
	"github.com/seqarchive/seqsubmit/internal/worklog"
)

// Runner executes upload attempts for one worker. Each worker owns its own
// Runner and worklog.Writer, so nothing here is shared between goroutines.
type Runner struct {
	transfer       transfer.Transfer
	vocab          *classify.Vocabulary
	log            *worklog.Writer
	attemptTimeout time.Duration
	logger         logging.Logger
}

func NewRunner(t transfer.Transfer, v *classify.Vocabulary, w *worklog.Writer, attemptTimeout time.Duration, logger logging.Logger) *Runner {
	return &Runner{
		transfer:       t,
		vocab:          v,
		log:            w,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Execute performs exactly one external invocation for the entry,
// classifies the combined output, and appends the attempt record to the
// worker log. Invocation failures never escape as errors: unrecognized
// output from a failed invocation is an unknown (retryable) failure, and
// only the scheduler decides when an entry is out of budget.
func (r *Runner) Execute(ctx context.Context, e *models.FileEntry) models.Outcome {
	e.Attempts++
	start := time.Now()

	attemptCtx := ctx
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}

	combined, err := r.transfer.Upload(attemptCtx, e)
	if err != nil {
		// The invocation error text is part of the attempt record and may
		// itself carry a classifiable phrase.
		if combined != "" && !strings.HasSuffix(combined, "\n") {
			combined += "\n"
		}
		combined += err.Error()
	}

	outcome := r.vocab.Classify(e.ID, combined)
	if err != nil && outcome == models.OutcomeTransient {
		outcome = models.OutcomeUnknown
	}

	rec := worklog.AttemptRecord{
		Start:       start,
		End:         time.Now(),
		EntryID:     e.ID,
		SubmitterID: e.SubmitterID,
		ResolvedDir: e.ResolvedDir,
		Attempt:     e.Attempts,
		Output:      combined,
		Outcome:     outcome,
	}
	if werr := r.log.Append(rec); werr != nil {
		r.logger.Error(ctx, "writing attempt record", "entry", e.ID, "error", werr)
	}

	return outcome
}

// Requeued records a retry decision in the worker log.
func (r *Runner) Requeued(ctx context.Context, e *models.FileEntry) {
	if err := r.log.Requeue(e.ID, e.Attempts); err != nil {
		r.logger.Error(ctx, "writing requeue record", "entry", e.ID, "error", err)
	}
}

// Close releases the worker log at worker exit.
func (r *Runner) Close() error {
	return r.log.Close()
}
