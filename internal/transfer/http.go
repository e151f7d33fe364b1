package transfer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/seqarchive/seqsubmit/internal/models"
	"github.com/seqarchive/seqsubmit/internal/netx"
)

// HTTP uploads entries with a plain PUT to <endpoint>/files/<id>/<name>.
type HTTP struct {
	Client   *http.Client
	Endpoint string
	Token    string
}

func NewHTTP(endpoint, token string) *HTTP {
	return &HTTP{Client: &http.Client{}, Endpoint: strings.TrimRight(endpoint, "/"), Token: token}
}

func (u *HTTP) Upload(ctx context.Context, e *models.FileEntry) (string, error) {
	path := filepath.Join(e.ResolvedDir, e.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Sprintf("local file not found for %s (%s)\n", e.ID, path), nil
	}

	contentType := "application/octet-stream"
	if m, err := mimetype.DetectFile(path); err == nil {
		contentType = m.String()
	}

	// Submitter file names can carry spaces and other reserved characters.
	target := fmt.Sprintf("%s/files/%s/%s", u.Endpoint, url.PathEscape(e.ID), url.PathEscape(e.FileName))
	body, err := netx.PutFile(ctx, u.Client, target, u.Token, path, contentType)
	if err != nil {
		// The archive's response body may still carry a classifiable phrase
		// (e.g. a 409 for an already validated file).
		return body, err
	}

	// Some archive deployments answer 200 with an empty body; make the
	// attempt classifiable regardless. A body phrase with higher priority
	// (already exists) still wins in the classifier.
	body += fmt.Sprintf("\nupload finished for file %s\n", e.ID)
	return body, nil
}
