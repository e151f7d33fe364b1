// Package report rebuilds the run aggregate from the worker logs.
//
// This is deliberately a second, independent pass over already-written text:
// it does not need the scheduler's in-memory state, only a directory of
// worker logs and the classifier vocabulary. Operators can therefore
// regenerate a report from historical logs without re-running any upload.
package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/seqarchive/seqsubmit/internal/classify"
	"github.com/seqarchive/seqsubmit/internal/models"
	"github.com/seqarchive/seqsubmit/internal/worklog"
)

type attempt struct {
	header  worklog.Header
	trailer worklog.Trailer
	outcome models.Outcome
}

// Aggregate scans every worker log under logDir and rebuilds the terminal
// state of each entry: the raw output of every attempt block is re-run
// through the classifier vocabulary, so the aggregate follows the same
// recognition rules as the live run. An entry whose last recorded attempt
// is still retryable exhausted its budget (otherwise another attempt would
// have been recorded).
func Aggregate(logDir string, vocab *classify.Vocabulary) (*models.Report, []models.EntryResult, error) {
	return aggregateGlob(logDir, "worker_*.log", vocab)
}

// AggregateRun is Aggregate restricted to one run's logs. The live run uses
// this so leftover logs from earlier runs in the same directory never leak
// into its report; the standalone re-scan keeps reading everything.
func AggregateRun(logDir, runID string, vocab *classify.Vocabulary) (*models.Report, []models.EntryResult, error) {
	return aggregateGlob(logDir, fmt.Sprintf("worker_*_%s.log", runID), vocab)
}

func aggregateGlob(logDir, pattern string, vocab *classify.Vocabulary) (*models.Report, []models.EntryResult, error) {
	paths, err := filepath.Glob(filepath.Join(logDir, pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("listing worker logs: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no worker logs under %s", logDir)
	}
	sort.Strings(paths)

	last := map[string]attempt{}
	requeues := 0
	var first, lastEnd time.Time

	for _, path := range paths {
		attempts, fileRequeues, err := scanFile(path, vocab)
		if err != nil {
			return nil, nil, err
		}
		requeues += fileRequeues

		for _, a := range attempts {
			if first.IsZero() || a.header.Start.Before(first) {
				first = a.header.Start
			}
			if a.trailer.End.After(lastEnd) {
				lastEnd = a.trailer.End
			}
			if prev, ok := last[a.header.EntryID]; !ok || a.header.Attempt > prev.header.Attempt {
				last[a.header.EntryID] = a
			}
		}
	}

	rep := &models.Report{Requeues: requeues}
	if !first.IsZero() {
		rep.Elapsed = lastEnd.Sub(first)
	}

	results := make([]models.EntryResult, 0, len(last))
	for id, a := range last {
		outcome := a.outcome
		if outcome.Retryable() {
			outcome = models.OutcomeMaxRetries
		}

		r := models.EntryResult{
			ID:          id,
			SubmitterID: a.header.SubmitterID,
			ResolvedDir: a.trailer.ResolvedDir,
			Outcome:     outcome,
			Attempts:    a.header.Attempt,
		}
		results = append(results, r)

		switch outcome {
		case models.OutcomeSuccess:
			rep.Success++
		case models.OutcomeAlreadyExists:
			rep.AlreadyExists++
		case models.OutcomeNotFound:
			rep.NotFound++
			rep.Failed = append(rep.Failed, r)
		case models.OutcomeMaxRetries:
			rep.MaxRetries++
			rep.Failed = append(rep.Failed, r)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	sort.Slice(rep.Failed, func(i, j int) bool { return rep.Failed[i].ID < rep.Failed[j].ID })

	return rep, results, nil
}

func scanFile(path string, vocab *classify.Vocabulary) ([]attempt, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening worker log: %w", err)
	}
	defer f.Close()

	var (
		attempts []attempt
		requeues int
		current  *attempt
		output   strings.Builder
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if worklog.IsRequeue(line) {
			requeues++
			continue
		}
		if h, ok := worklog.ParseHeader(line); ok {
			current = &attempt{header: h}
			output.Reset()
			continue
		}
		if tr, ok := worklog.ParseTrailer(line); ok {
			if current == nil {
				continue // trailer without header, ignore
			}
			current.trailer = tr
			current.outcome = vocab.Classify(current.header.EntryID, output.String())
			if current.outcome == models.OutcomeTransient && tr.Outcome == models.OutcomeUnknown {
				// invocation-level failures are visible only in the trailer
				current.outcome = models.OutcomeUnknown
			}
			attempts = append(attempts, *current)
			current = nil
			continue
		}
		if current != nil {
			output.WriteString(line)
			output.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("scanning %s: %w", path, err)
	}

	return attempts, requeues, nil
}
