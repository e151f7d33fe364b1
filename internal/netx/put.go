// Package netx contains the HTTP transfer helper used by the http upload
// backend.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/seqarchive/seqsubmit/internal/common"
)

// PutFile streams the file at path to url with an HTTP PUT, carrying the
// archive token. The response body is returned as text in both the success
// and failure cases so the caller can classify it.
func PutFile(ctx context.Context, client *http.Client, url, token, path, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return "", err
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set(common.TokenHeaderName, token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return text, fmt.Errorf("upload failed: %s", resp.Status)
	}
	return text, nil
}
