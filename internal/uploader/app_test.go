package uploader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/seqsubmit/internal/common"
	"github.com/seqarchive/seqsubmit/internal/config"
	"github.com/seqarchive/seqsubmit/internal/transfer"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BaseDir = base
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Threads = 2
	cfg.MaxRetries = 1
	cfg.RetryPause = 0
	cfg.Mode = transfer.ModeTool
	cfg.ToolPath = "/bin/sh"
	cfg.ToolArgs = []string{"-c", "echo upload finished for file {id}"}

	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("opaque-archive-key"), 0o600))
	cfg.TokenPath = tokenPath

	manifestPath := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`[
  {"id":"a1b2","submitter_id":"s1.fastq.gz","file_name":"s1.fastq.gz","file_size":5},
  {"id":"c3d4","submitter_id":"missing.bam","file_name":"missing.bam","file_size":9}
]`), 0o600))
	cfg.ManifestPath = manifestPath

	require.NoError(t, os.MkdirAll(filepath.Join(base, "fastq"), 0o770))
	require.NoError(t, os.WriteFile(filepath.Join(base, "fastq", "s1.fastq.gz"), []byte("reads"), 0o600))

	return cfg
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sh")
	}

	cfg := testConfig(t)
	app, err := NewApp(cfg)
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))

	// one worker log per worker, one report
	logs, err := filepath.Glob(filepath.Join(cfg.LogDir, "worker_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, cfg.Threads)

	reports, err := filepath.Glob(filepath.Join(cfg.LogDir, "upload_report_*.tsv"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	data, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	report := string(data)

	// the located entry succeeded; the missing one never ran
	assert.Contains(t, report, "a1b2\ts1.fastq.gz")
	assert.Contains(t, report, "SUCCESS")
	assert.NotContains(t, report, "c3d4")
}

func TestRunFailsWhenNothingIsReady(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sh")
	}

	cfg := testConfig(t)
	// manifest naming only files that do not exist anywhere
	manifestPath := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`[
  {"id":"zz99","submitter_id":"ghost.bam","file_name":"ghost.bam"}
]`), 0o600))
	cfg.ManifestPath = manifestPath

	app, err := NewApp(cfg)
	require.NoError(t, err)

	err = app.Run(context.Background())
	assert.ErrorIs(t, err, common.ErrNoReadyEntries)
}
