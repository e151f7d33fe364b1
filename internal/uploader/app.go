// Package uploader wires the run together: manifest, locator, scheduler and
// report.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/seqarchive/seqsubmit/internal/authx"
	"github.com/seqarchive/seqsubmit/internal/classify"
	"github.com/seqarchive/seqsubmit/internal/config"
	"github.com/seqarchive/seqsubmit/internal/executor"
	"github.com/seqarchive/seqsubmit/internal/filex"
	"github.com/seqarchive/seqsubmit/internal/locator"
	"github.com/seqarchive/seqsubmit/internal/logging"
	"github.com/seqarchive/seqsubmit/internal/manifest"
	"github.com/seqarchive/seqsubmit/internal/models"
	"github.com/seqarchive/seqsubmit/internal/report"
	"github.com/seqarchive/seqsubmit/internal/scheduler"
	"github.com/seqarchive/seqsubmit/internal/transfer"
	"github.com/seqarchive/seqsubmit/internal/worklog"
)

type App struct {
	cfg    *config.Config
	logger logging.Logger
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	return &App{cfg: cfg, logger: logger}, nil
}

// Run performs one complete upload run. Per-entry failures are reported,
// never returned; the error covers only run-level problems (bad manifest,
// nothing to upload, unusable token or backend).
func (a *App) Run(ctx context.Context) error {
	cfg := a.cfg

	logDir, err := filex.EnsureDir(cfg.LogDir)
	if err != nil {
		return err
	}

	vocab := classify.Default()
	if cfg.VocabularyPath != "" {
		if vocab, err = classify.LoadVocabulary(cfg.VocabularyPath); err != nil {
			return err
		}
	}

	entries, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "manifest loaded", "manifest", cfg.ManifestPath, "entries", len(entries))

	ready := a.locate(ctx, entries)
	a.logger.Info(ctx, "file resolution complete",
		"ready", ready, "missing", len(entries)-ready)

	tr, err := a.newTransfer(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	factory := func(index int) (scheduler.Worker, error) {
		w, err := worklog.New(logDir, index, runID)
		if err != nil {
			return nil, err
		}
		return executor.NewRunner(tr, vocab, w, cfg.AttemptTimeout, a.logger.With("worker", index)), nil
	}

	sched, err := scheduler.New(entries, factory, scheduler.Options{
		Threads:    cfg.Threads,
		MaxRetries: cfg.MaxRetries,
		RetryPause: cfg.RetryPause,
	}, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "starting upload run",
		"run", runID, "threads", cfg.Threads, "max_retries", cfg.MaxRetries, "mode", cfg.Mode)

	res, err := sched.Run(ctx)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "workers joined", "elapsed", res.Elapsed.String())

	rep, results, err := report.AggregateRun(logDir, runID, vocab)
	if err != nil {
		return err
	}
	path, err := report.Write(logDir, rep, results)
	if err != nil {
		return err
	}
	report.Log(ctx, a.logger, rep, path)

	return nil
}

// locate resolves each entry's physical directory and returns the ready
// count. Absence is expected and only logged; the entry simply stays out of
// the queue.
func (a *App) locate(ctx context.Context, entries []*models.FileEntry) int {
	loc := locator.New(a.cfg.BaseDir, a.cfg.RunIDTokens, a.cfg.RunIDDelimiter)

	ready := 0
	for _, e := range entries {
		dir, ok := loc.Locate(e)
		if !ok {
			a.logger.Warn(ctx, "file not located",
				"entry", e.ID, "name", e.FileName, "base_dir", a.cfg.BaseDir)
			continue
		}
		e.Resolve(dir)
		ready++
	}
	return ready
}

func (a *App) newTransfer(ctx context.Context) (transfer.Transfer, error) {
	cfg := a.cfg

	switch cfg.Mode {
	case transfer.ModeS3:
		return transfer.NewS3(ctx, transfer.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case transfer.ModeTool, transfer.ModeHTTP:
		token, err := authx.Token(cfg.TokenPath, os.Stdout)
		if err != nil {
			return nil, err
		}
		if err := authx.CheckExpiry(ctx, token, 24*time.Hour, a.logger); err != nil {
			return nil, err
		}
		if cfg.Mode == transfer.ModeHTTP {
			return transfer.NewHTTP(cfg.HTTPEndpoint, token), nil
		}
		return transfer.NewTool(cfg.ToolPath, cfg.ToolArgs, token), nil
	default:
		return nil, fmt.Errorf("unknown transfer mode %q", cfg.Mode)
	}
}
