package config

import (
	"flag"
	"os"
	"time"

	"github.com/seqarchive/seqsubmit/internal/flagx"
	"github.com/seqarchive/seqsubmit/internal/transfer"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-m string   manifest path
//	-b string   base directory for file resolution
//	-l string   log directory
//	-t int      worker thread count
//	-r int      max retries per entry
//	-mode str   transfer mode (tool|s3|http)
//	-tool str   path to the external transfer executable
//	-token str  path to the archive token file
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-m", "-b", "-l", "-t", "-r", "-mode", "-tool", "-token", "-timeout",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ManifestPath, "m", cfg.ManifestPath, "metadata manifest path")
	fs.StringVar(&cfg.BaseDir, "b", cfg.BaseDir, "base directory for file resolution")
	fs.StringVar(&cfg.LogDir, "l", cfg.LogDir, "log directory")
	fs.IntVar(&cfg.Threads, "t", cfg.Threads, "worker thread count")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "max retries per entry")
	mode := fs.String("mode", string(cfg.Mode), "transfer mode (tool|s3|http)")
	fs.StringVar(&cfg.ToolPath, "tool", cfg.ToolPath, "external transfer executable")
	fs.StringVar(&cfg.TokenPath, "token", cfg.TokenPath, "archive token file")
	timeout := fs.Int("timeout", int(cfg.AttemptTimeout.Seconds()), "per-attempt timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Mode = transfer.Mode(*mode)
	cfg.AttemptTimeout = time.Duration(*timeout) * time.Second
}
