// Package models defines the upload work unit and report types.
package models

// FileEntry is one file to be uploaded, as described by the metadata
// manifest. ID, SubmitterID, FileName, ExpectedSize and MD5 are immutable
// after parsing. ResolvedDir is set exactly once by the locator; Attempts is
// incremented only by the worker currently holding the entry, so neither
// field needs its own locking.
type FileEntry struct {
	ID           string
	SubmitterID  string
	FileName     string
	ExpectedSize int64
	MD5          string

	ResolvedDir string
	Ready       bool
	Attempts    int
}

// Resolve records the directory containing the physical file. The first
// call wins; later calls are ignored so the Ready/ResolvedDir invariant
// cannot be broken after scheduling starts.
func (e *FileEntry) Resolve(dir string) {
	if e.Ready {
		return
	}
	e.ResolvedDir = dir
	e.Ready = true
}

// EntryResult is the terminal record for one entry.
type EntryResult struct {
	ID          string
	SubmitterID string
	ResolvedDir string
	Outcome     Outcome
	Attempts    int
}
