// seqreport rebuilds an upload report from a directory of worker logs,
// without re-running any upload.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/seqarchive/seqsubmit/internal/classify"
	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/report"
)

func main() {

	logDir := flag.String("l", "logs", "directory of worker logs")
	vocabPath := flag.String("vocab", "", "phrase vocabulary JSON (optional)")
	flag.Parse()

	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	vocab := classify.Default()
	if *vocabPath != "" {
		v, err := classify.LoadVocabulary(*vocabPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		vocab = v
	}

	rep, results, err := report.Aggregate(*logDir, vocab)
	if err != nil {
		log.Fatalf("%v", err)
	}

	path, err := report.Write(*logDir, rep, results)
	if err != nil {
		log.Fatalf("%v", err)
	}

	report.Log(ctx, logger, rep, path)
}
