// Package config assembles the runtime settings for the uploader.
//
// Sources are applied in order, later ones winning: built-in defaults, a
// JSON config file (-c/-config), then command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/seqarchive/seqsubmit/internal/transfer"
)

// Config holds runtime settings for the SeqSubmit CLI.
type Config struct {
	// ManifestPath names the metadata manifest (JSON or TSV).
	ManifestPath string

	// BaseDir is the root under which physical files are located.
	BaseDir string

	// LogDir receives the per-worker logs and the report; created if absent.
	LogDir string

	// Threads is the worker pool size.
	Threads int

	// MaxRetries is the per-entry retry budget (re-enqueues, not attempts).
	MaxRetries int

	// RetryPause is the fixed pause before a failed entry is re-enqueued.
	RetryPause time.Duration

	// AttemptTimeout bounds one external invocation. Genomic files are
	// large, so the default is generous.
	AttemptTimeout time.Duration

	// Mode selects the transfer mechanism: tool, s3 or http.
	Mode transfer.Mode

	// ToolPath and ToolArgs configure the external transfer executable.
	// ToolArgs may use the {id}, {file} and {token} placeholders.
	ToolPath string
	ToolArgs []string

	// TokenPath names a file holding the archive token; empty means prompt.
	TokenPath string

	// VocabularyPath optionally overrides the built-in phrase table.
	VocabularyPath string

	// Run-id derivation policy for the uBam directory convention.
	RunIDTokens    int
	RunIDDelimiter string

	// S3 endpoint settings (Mode == s3).
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	// HTTPEndpoint is the archive base URL (Mode == http).
	HTTPEndpoint string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LogDir = "logs"
	c.Threads = 4
	c.MaxRetries = 3
	c.RetryPause = 500 * time.Millisecond
	c.AttemptTimeout = 6 * time.Hour
	c.Mode = transfer.ModeTool
	c.RunIDTokens = 4
	c.RunIDDelimiter = "_"
}

// Validate reports configuration problems that must stop the run before any
// worker starts.
func (c *Config) Validate() error {
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest path is required")
	}
	if c.BaseDir == "" {
		return fmt.Errorf("base directory is required")
	}
	if c.Threads <= 0 {
		return fmt.Errorf("thread count must be positive, got %d", c.Threads)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", c.MaxRetries)
	}

	switch c.Mode {
	case transfer.ModeTool:
		if c.ToolPath == "" {
			return fmt.Errorf("tool path is required in tool mode")
		}
	case transfer.ModeS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required in s3 mode")
		}
	case transfer.ModeHTTP:
		if c.HTTPEndpoint == "" {
			return fmt.Errorf("http endpoint is required in http mode")
		}
	default:
		return fmt.Errorf("unknown transfer mode %q", c.Mode)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
