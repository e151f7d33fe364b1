// Package locator resolves logical file names to physical directories under
// the sequencing-output directory conventions.
package locator

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/seqarchive/seqsubmit/internal/filex"
	"github.com/seqarchive/seqsubmit/internal/models"
)

// Locator probes a base directory for an entry's physical file. The run-id
// derivation is policy data, not code: different sequencing centers use
// different naming schemes, so the token count and delimiter are supplied
// by configuration.
type Locator struct {
	BaseDir string

	// RunIDTokens is the number of leading delimiter-separated tokens of the
	// submitter id that form the run id used by the uBam layout.
	RunIDTokens int

	// Delimiter separates tokens in the submitter id (usually "_").
	Delimiter string
}

// New returns a Locator with the conventional defaults for any zero field.
func New(baseDir string, runIDTokens int, delimiter string) *Locator {
	if runIDTokens <= 0 {
		runIDTokens = 4
	}
	if delimiter == "" {
		delimiter = "_"
	}
	return &Locator{BaseDir: baseDir, RunIDTokens: runIDTokens, Delimiter: delimiter}
}

// Locate finds the directory containing the entry's file. Probe order: the
// type-specific convention directory, the base directory, then a recursive
// walk for an exact file name match. A missing file is an expected outcome
// and is reported via ok=false, never an error.
func (l *Locator) Locate(e *models.FileEntry) (dir string, ok bool) {
	for _, candidate := range l.candidates(e) {
		if filex.Exists(filepath.Join(candidate, e.FileName)) {
			return candidate, true
		}
	}
	return l.walk(e.FileName)
}

func (l *Locator) candidates(e *models.FileEntry) []string {
	var conventional string
	switch {
	case isBAMLike(e.FileName):
		conventional = filepath.Join(l.BaseDir, "uBam", l.runID(e))
	case isFASTQLike(e.FileName):
		conventional = filepath.Join(l.BaseDir, "fastq")
	}

	if conventional == "" {
		return []string{l.BaseDir}
	}
	return []string{conventional, l.BaseDir}
}

// runID derives the grouping key used by the uBam directory layout: the
// first RunIDTokens tokens of the submitter id. Short names fall back to the
// file name stem instead of indexing past the token list.
func (l *Locator) runID(e *models.FileEntry) string {
	name := e.SubmitterID
	if name == "" {
		name = e.FileName
	}

	tokens := strings.Split(name, l.Delimiter)
	if len(tokens) >= l.RunIDTokens {
		return strings.Join(tokens[:l.RunIDTokens], l.Delimiter)
	}
	return stem(e.FileName)
}

func (l *Locator) walk(fileName string) (string, bool) {
	var found string
	_ = filepath.WalkDir(l.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if !d.IsDir() && d.Name() == fileName {
			found = filepath.Dir(path)
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// stem strips every extension, so "S1.fastq.gz" becomes "S1".
func stem(fileName string) string {
	s := fileName
	for {
		ext := filepath.Ext(s)
		if ext == "" {
			return s
		}
		s = strings.TrimSuffix(s, ext)
	}
}

func isBAMLike(fileName string) bool {
	n := strings.ToLower(fileName)
	return strings.Contains(n, ".bam") || strings.Contains(n, ".cram")
}

func isFASTQLike(fileName string) bool {
	n := strings.ToLower(fileName)
	return strings.Contains(n, ".fastq") || strings.Contains(n, ".fq")
}
