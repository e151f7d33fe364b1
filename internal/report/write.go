package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/models"
)

// Write emits the aggregate as a tab-separated report file under dir, one
// row per entry, and returns the file path. Every call produces a uniquely
// named file so prior reports are never overwritten.
func Write(dir string, rep *models.Report, results []models.EntryResult) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("upload_report_%s.tsv", uuid.NewString()))

	var b strings.Builder
	b.WriteString("id\tsubmitter_id\tresolved_dir\tstatus\tattempts\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.SubmitterID, r.ResolvedDir, r.Outcome, r.Attempts)
	}
	fmt.Fprintf(&b, "# success=%d already_exists=%d not_found=%d max_retries=%d requeues=%d elapsed=%s\n",
		rep.Success, rep.AlreadyExists, rep.NotFound, rep.MaxRetries, rep.Requeues, rep.Elapsed)

	if err := os.WriteFile(path, []byte(b.String()), 0o660); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Log prints the operator summary. NotFoundLocally and MaxRetriesExceeded
// entries are actionable; AlreadyExists is informational.
func Log(ctx context.Context, log logging.Logger, rep *models.Report, path string) {
	log.Info(ctx, "upload run summary",
		"success", rep.Success,
		"already_exists", rep.AlreadyExists,
		"not_found", rep.NotFound,
		"max_retries_exceeded", rep.MaxRetries,
		"requeues", rep.Requeues,
		"elapsed", rep.Elapsed.String(),
		"report", path,
	)
	for _, r := range rep.Failed {
		log.Warn(ctx, "entry needs operator attention",
			"entry", r.ID, "name", r.SubmitterID, "status", r.Outcome, "attempts", r.Attempts)
	}
}
