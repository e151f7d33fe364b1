package transfer

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/seqarchive/seqsubmit/internal/models"
)

// Tool drives the external transfer executable. The argument template may
// reference {id}, {file} and {token}; each placeholder is expanded per
// entry. The tool requires execution from the file's own directory, so the
// working directory is always the entry's resolved location.
type Tool struct {
	Path  string
	Args  []string
	Token string
}

// DefaultToolArgs is the argument template for the stock transfer tool.
var DefaultToolArgs = []string{"upload", "-t", "{token}", "{id}"}

func NewTool(path string, args []string, token string) *Tool {
	if len(args) == 0 {
		args = DefaultToolArgs
	}
	return &Tool{Path: path, Args: args, Token: token}
}

func (t *Tool) Upload(ctx context.Context, e *models.FileEntry) (string, error) {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		a = strings.ReplaceAll(a, "{id}", e.ID)
		a = strings.ReplaceAll(a, "{file}", e.FileName)
		a = strings.ReplaceAll(a, "{token}", t.Token)
		args[i] = a
	}

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = e.ResolvedDir

	// The tool forks helpers that inherit the output pipe. Without a wait
	// delay, Wait keeps reading until every descendant exits, which lets a
	// hung helper hold the worker slot long past the attempt deadline.
	cmd.WaitDelay = 5 * time.Second

	out, err := cmd.CombinedOutput()
	return string(out), err
}
