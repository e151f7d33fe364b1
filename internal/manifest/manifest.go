// Package manifest parses archive metadata manifests into upload entries.
//
// Two formats are supported, chosen by file extension: a JSON array of
// objects and a tab-separated file with a header row. Both must carry the
// four fields the orchestrator needs (id, submitter_id, file_name,
// file_size); an md5 column is optional and informational.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/seqarchive/seqsubmit/internal/common"
	"github.com/seqarchive/seqsubmit/internal/models"
)

type jsonEntry struct {
	ID          string `json:"id"`
	SubmitterID string `json:"submitter_id"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	MD5         string `json:"md5"`
}

// Load reads the manifest at path and returns one FileEntry per record.
func Load(path string) ([]*models.FileEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".tsv", ".txt":
		return loadTSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrManifestFormat, path)
	}
}

func loadJSON(path string) ([]*models.FileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var records []jsonEntry
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	entries := make([]*models.FileEntry, 0, len(records))
	for i, r := range records {
		if r.ID == "" || r.FileName == "" {
			return nil, fmt.Errorf("%w: record %d needs id and file_name", common.ErrManifestField, i)
		}
		entries = append(entries, &models.FileEntry{
			ID:           r.ID,
			SubmitterID:  r.SubmitterID,
			FileName:     r.FileName,
			ExpectedSize: r.FileSize,
			MD5:          r.MD5,
		})
	}
	return entries, nil
}

func loadTSV(path string) ([]*models.FileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: empty manifest %s", common.ErrManifestFormat, path)
	}

	cols := map[string]int{}
	for i, name := range strings.Split(lines[0], "\t") {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"id", "file_name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: column %q", common.ErrManifestField, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []*models.FileEntry
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := strings.Split(line, "\t")

		e := &models.FileEntry{
			ID:          field(row, "id"),
			SubmitterID: field(row, "submitter_id"),
			FileName:    field(row, "file_name"),
			MD5:         field(row, "md5"),
		}
		if size := field(row, "file_size"); size != "" {
			n, err := strconv.ParseInt(size, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: file_size %q in row %q", common.ErrManifestField, size, line)
			}
			e.ExpectedSize = n
		}
		if e.ID == "" || e.FileName == "" {
			return nil, fmt.Errorf("%w: row %q needs id and file_name", common.ErrManifestField, line)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
