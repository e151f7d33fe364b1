package report

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/seqsubmit/internal/classify"
	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/models"
	"github.com/seqarchive/seqsubmit/internal/worklog"
)

// writeLogs lays down two worker logs covering the retry scenario: A fails
// twice then succeeds, B is not found, C succeeds, D runs out of budget.
func writeLogs(t *testing.T, dir string) {
	t.Helper()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	w0, err := worklog.New(dir, 0, "run1")
	require.NoError(t, err)
	w1, err := worklog.New(dir, 1, "run1")
	require.NoError(t, err)

	rec := func(id, name string, attempt int, out string, outcome models.Outcome, offset time.Duration) worklog.AttemptRecord {
		return worklog.AttemptRecord{
			Start:       base.Add(offset),
			End:         base.Add(offset + time.Minute),
			EntryID:     id,
			SubmitterID: name,
			ResolvedDir: "/data/fastq",
			Attempt:     attempt,
			Output:      out,
			Outcome:     outcome,
		}
	}

	require.NoError(t, w0.Append(rec("A", "a.fastq.gz", 1, "connection reset", models.OutcomeTransient, 0)))
	require.NoError(t, w0.Requeue("A", 1))
	require.NoError(t, w0.Append(rec("B", "b.fastq.gz", 1, "local file not found for B", models.OutcomeNotFound, time.Minute)))
	require.NoError(t, w0.Append(rec("A", "a.fastq.gz", 2, "connection reset", models.OutcomeTransient, 2*time.Minute)))
	require.NoError(t, w0.Requeue("A", 2))
	require.NoError(t, w0.Close())

	require.NoError(t, w1.Append(rec("C", "c.bam", 1, "upload finished for file C", models.OutcomeSuccess, 0)))
	require.NoError(t, w1.Append(rec("A", "a.fastq.gz", 3, "upload finished for file A", models.OutcomeSuccess, 3*time.Minute)))
	require.NoError(t, w1.Append(rec("D", "d.bam", 1, "weird output", models.OutcomeTransient, 4*time.Minute)))
	require.NoError(t, w1.Requeue("D", 1))
	require.NoError(t, w1.Append(rec("D", "d.bam", 2, "weird output", models.OutcomeTransient, 5*time.Minute)))
	require.NoError(t, w1.Close())
}

func TestAggregate(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir)

	rep, results, err := Aggregate(dir, classify.Default())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Success)       // A, C
	assert.Equal(t, 0, rep.AlreadyExists)
	assert.Equal(t, 1, rep.NotFound)   // B
	assert.Equal(t, 1, rep.MaxRetries) // D
	assert.Equal(t, 3, rep.Requeues)
	assert.Equal(t, 6*time.Minute, rep.Elapsed)

	require.Len(t, results, 4)
	byID := map[string]models.EntryResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.Equal(t, models.OutcomeSuccess, byID["A"].Outcome)
	assert.Equal(t, 3, byID["A"].Attempts)
	assert.Equal(t, models.OutcomeNotFound, byID["B"].Outcome)
	assert.Equal(t, models.OutcomeSuccess, byID["C"].Outcome)
	assert.Equal(t, models.OutcomeMaxRetries, byID["D"].Outcome)
	assert.Equal(t, 2, byID["D"].Attempts)

	failedIDs := make([]string, 0, len(rep.Failed))
	for _, f := range rep.Failed {
		failedIDs = append(failedIDs, f.ID)
	}
	assert.Equal(t, []string{"B", "D"}, failedIDs)
}

// Aggregation is a pure function of the directory contents.
func TestAggregateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir)

	rep1, results1, err := Aggregate(dir, classify.Default())
	require.NoError(t, err)
	rep2, results2, err := Aggregate(dir, classify.Default())
	require.NoError(t, err)

	assert.Equal(t, rep1, rep2)
	assert.Equal(t, results1, results2)
}

// A log directory accumulates files across runs; the per-run view must only
// count the logs stamped with the requested run id.
func TestAggregateRunIgnoresOtherRuns(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir)

	stale, err := worklog.New(dir, 0, "run0")
	require.NoError(t, err)
	require.NoError(t, stale.Append(worklog.AttemptRecord{
		Start:       time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 3, 9, 12, 1, 0, 0, time.UTC),
		EntryID:     "Z",
		SubmitterID: "z.bam",
		ResolvedDir: "/data/uBam",
		Attempt:     1,
		Output:      "upload finished for file Z",
		Outcome:     models.OutcomeSuccess,
	}))
	require.NoError(t, stale.Close())

	rep, results, err := AggregateRun(dir, "run1", classify.Default())
	require.NoError(t, err)

	require.Len(t, results, 4)
	for _, r := range results {
		assert.NotEqual(t, "Z", r.ID)
	}
	assert.Equal(t, 2, rep.Success)

	all, allResults, err := Aggregate(dir, classify.Default())
	require.NoError(t, err)
	assert.Len(t, allResults, 5)
	assert.Equal(t, 3, all.Success)
}

func TestAggregateEmptyDir(t *testing.T) {
	_, _, err := Aggregate(t.TempDir(), classify.Default())
	assert.Error(t, err)
}

func TestWriteProducesUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	rep := &models.Report{Success: 1}
	results := []models.EntryResult{
		{ID: "A", SubmitterID: "a.bam", ResolvedDir: "/data", Outcome: models.OutcomeSuccess, Attempts: 1},
	}

	p1, err := Write(dir, rep, results)
	require.NoError(t, err)
	p2, err := Write(dir, rep, results)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, "id\tsubmitter_id\tresolved_dir\tstatus\tattempts", lines[0])
	assert.Equal(t, "A\ta.bam\t/data\tSUCCESS\t1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "# success=1"))

	matches, err := filepath.Glob(filepath.Join(dir, "upload_report_*.tsv"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	rep := &models.Report{
		Success: 1,
		Failed: []models.EntryResult{
			{ID: "B", SubmitterID: "b.bam", Outcome: models.OutcomeNotFound, Attempts: 1},
		},
	}
	Log(context.Background(), log, rep, "/tmp/report.tsv")

	out := buf.String()
	assert.Contains(t, out, "upload run summary")
	assert.Contains(t, out, "needs operator attention")
	assert.Contains(t, out, "B")
}
