// Package classify maps the free-text output of one upload attempt to a
// discrete outcome.
//
// The external transfer tool does not speak a structured protocol; its text
// output is the correctness boundary. The phrase table is therefore plain
// data: the built-in table matches the tool versions we run in production,
// and an alternative table can be loaded from JSON when the tool output
// drifts.
package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// Vocabulary is the phrase table used to recognize attempt outcomes. The
// Success and NotFound phrases are matched only on lines that also mention
// the entry id; AlreadyExists phrases match anywhere, since the tool prints
// them without repeating the id.
type Vocabulary struct {
	AlreadyExists []string `json:"already_exists"`
	NotFound      []string `json:"not_found"`
	Success       []string `json:"success"`
}

// Default returns the phrase table for the stock transfer tool.
func Default() *Vocabulary {
	return &Vocabulary{
		AlreadyExists: []string{
			"file in validated state",
			"already exists at the destination",
			"has already been validated",
		},
		NotFound: []string{
			"local file not found",
			"no such file or directory",
		},
		Success: []string{
			"upload finished for file",
			"successfully uploaded",
		},
	}
}

// LoadVocabulary reads a phrase table from a JSON file. Empty phrase lists
// fall back to the defaults so a partial override stays safe.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}

	v := &Vocabulary{}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	d := Default()
	if len(v.AlreadyExists) == 0 {
		v.AlreadyExists = d.AlreadyExists
	}
	if len(v.NotFound) == 0 {
		v.NotFound = d.NotFound
	}
	if len(v.Success) == 0 {
		v.Success = d.Success
	}
	return v, nil
}
