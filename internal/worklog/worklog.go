// Package worklog writes the append-only per-worker attempt logs.
//
// Exactly one worker writes to a given file for the lifetime of a run, so
// no locking is needed on the write path. The log is the only durable record
// of a run: the header/trailer framing carries enough structure for the
// report package to rebuild the final aggregate from the files alone.
package worklog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/seqarchive/seqsubmit/internal/models"
)

const (
	headerMarker  = "--- attempt"
	trailerMarker = "--- outcome"
	requeueMarker = "--- requeue"
)

// AttemptRecord is one upload attempt as written to a worker log.
type AttemptRecord struct {
	Start       time.Time
	End         time.Time
	EntryID     string
	SubmitterID string
	ResolvedDir string
	Attempt     int
	Output      string
	Outcome     models.Outcome
}

// Writer appends attempt records to one worker's log file.
type Writer struct {
	f *os.File
}

// FileName returns the deterministic log name for a worker index within a
// run.
func FileName(workerIndex int, runID string) string {
	return fmt.Sprintf("worker_%d_%s.log", workerIndex, runID)
}

// New creates (or truncates) the log file for the given worker index.
func New(dir string, workerIndex int, runID string) (*Writer, error) {
	path := filepath.Join(dir, FileName(workerIndex, runID))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating worker log: %w", err)
	}
	return &Writer{f: f}, nil
}

// Append writes one attempt record: a header line, the raw tool output
// verbatim, and a trailer line with the classified outcome.
func (w *Writer) Append(rec AttemptRecord) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\n",
		headerMarker,
		rec.Start.UTC().Format(time.RFC3339),
		rec.EntryID, rec.SubmitterID, rec.Attempt)

	b.WriteString(rec.Output)
	if rec.Output != "" && !strings.HasSuffix(rec.Output, "\n") {
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
		trailerMarker,
		rec.End.UTC().Format(time.RFC3339),
		rec.Outcome, rec.EntryID, rec.SubmitterID, rec.ResolvedDir, rec.Attempt)

	if _, err := w.f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing attempt record: %w", err)
	}
	return nil
}

// Requeue records that the entry went back to the queue after a retryable
// failure.
func (w *Writer) Requeue(entryID string, attempt int) error {
	_, err := fmt.Fprintf(w.f, "%s\t%s\t%d\n", requeueMarker, entryID, attempt)
	if err != nil {
		return fmt.Errorf("writing requeue record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Header is the parsed form of an attempt header line.
type Header struct {
	Start       time.Time
	EntryID     string
	SubmitterID string
	Attempt     int
}

// ParseHeader parses an attempt header line; ok is false for any other line.
func ParseHeader(line string) (Header, bool) {
	if !strings.HasPrefix(line, headerMarker+"\t") {
		return Header{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 5 {
		return Header{}, false
	}

	start, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return Header{}, false
	}
	attempt, err := strconv.Atoi(fields[4])
	if err != nil {
		return Header{}, false
	}

	return Header{
		Start:       start,
		EntryID:     fields[2],
		SubmitterID: fields[3],
		Attempt:     attempt,
	}, true
}

// Trailer is the parsed form of a trailer line.
type Trailer struct {
	End         time.Time
	Outcome     models.Outcome
	EntryID     string
	SubmitterID string
	ResolvedDir string
	Attempt     int
}

// IsRequeue reports whether line is a requeue marker.
func IsRequeue(line string) bool {
	return strings.HasPrefix(line, requeueMarker+"\t")
}

// ParseTrailer parses a trailer line; ok is false for any other line.
func ParseTrailer(line string) (Trailer, bool) {
	if !strings.HasPrefix(line, trailerMarker+"\t") {
		return Trailer{}, false
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return Trailer{}, false
	}

	end, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return Trailer{}, false
	}
	attempt, err := strconv.Atoi(fields[6])
	if err != nil {
		return Trailer{}, false
	}

	return Trailer{
		End:         end,
		Outcome:     models.OutcomeFrom(fields[2]),
		EntryID:     fields[3],
		SubmitterID: fields[4],
		ResolvedDir: fields[5],
		Attempt:     attempt,
	}, true
}
