// Package transfer implements the mechanisms that physically move one file
// to the archive. The orchestration core treats every mechanism as a black
// box producing combined text output: the tool backend drives the external
// transfer executable, the s3 backend PUTs to an S3-compatible endpoint, and
// the http backend PUTs to a plain HTTP archive API.
//
// Each backend renders its result into the classifier's phrase vocabulary,
// so one classification path serves all of them.
package transfer

import (
	"context"

	"github.com/seqarchive/seqsubmit/internal/models"
)

// Transfer performs one upload attempt for one entry. The returned string
// is the combined human-readable output of the attempt; err reports an
// invocation-level problem (process spawn, network, timeout). Callers
// classify the text and treat err as retryable, never fatal.
type Transfer interface {
	Upload(ctx context.Context, e *models.FileEntry) (combined string, err error)
}

// Mode names a configured transfer mechanism.
type Mode string

const (
	ModeTool Mode = "tool"
	ModeS3   Mode = "s3"
	ModeHTTP Mode = "http"
)
