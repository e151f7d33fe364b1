package worklog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/seqsubmit/internal/models"
)

func TestAppendAndParse(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, 0, "run1")
	require.NoError(t, err)

	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := AttemptRecord{
		Start:       start,
		End:         start.Add(90 * time.Second),
		EntryID:     "a1b2",
		SubmitterID: "S1.fastq.gz",
		ResolvedDir: "/data/fastq",
		Attempt:     2,
		Output:      "negotiating\nupload finished for file a1b2",
		Outcome:     models.OutcomeSuccess,
	}
	require.NoError(t, w.Append(rec))
	require.NoError(t, w.Requeue("a1b2", 1))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName(0, "run1")))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 5)

	// raw output is preserved verbatim between the markers
	assert.Equal(t, "negotiating", lines[1])
	assert.Equal(t, "upload finished for file a1b2", lines[2])

	h, ok := ParseHeader(lines[0])
	require.True(t, ok)
	assert.Equal(t, "a1b2", h.EntryID)
	assert.Equal(t, "S1.fastq.gz", h.SubmitterID)
	assert.Equal(t, 2, h.Attempt)
	assert.Equal(t, rec.Start, h.Start)

	tr, ok := ParseTrailer(lines[3])
	require.True(t, ok)
	assert.Equal(t, models.OutcomeSuccess, tr.Outcome)
	assert.Equal(t, "a1b2", tr.EntryID)
	assert.Equal(t, "S1.fastq.gz", tr.SubmitterID)
	assert.Equal(t, "/data/fastq", tr.ResolvedDir)
	assert.Equal(t, 2, tr.Attempt)
	assert.Equal(t, rec.End, tr.End)

	assert.True(t, IsRequeue(lines[4]))
	assert.False(t, IsRequeue(lines[3]))
}

func TestParseTrailerRejectsOtherLines(t *testing.T) {
	for _, line := range []string{
		"",
		"plain tool output",
		"--- attempt\t2026-03-10T12:00:00Z\ta1b2\tS1\t1",
		"--- outcome\tnot-a-time\tSUCCESS\ta\tb\tc\t1",
		"--- outcome\ttoo\tfew\tfields",
	} {
		_, ok := ParseTrailer(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "worker_3_abc.log", FileName(3, "abc"))
}
