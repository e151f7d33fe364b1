package classify

import (
	"strings"

	"github.com/seqarchive/seqsubmit/internal/models"
)

// Classify maps the combined stdout+stderr of one attempt to an outcome.
// Pure function of the text; no I/O.
//
// Priority order matters: an already-exists phrase wins over everything,
// then an id-referencing not-found phrase, then an id-referencing success
// phrase. Anything unrecognized is a transient failure — the tool's output
// vocabulary is not enumerable, and treating unknown text as retryable
// avoids false permanent failures when it drifts.
func (v *Vocabulary) Classify(entryID, combined string) models.Outcome {
	lower := strings.ToLower(combined)
	id := strings.ToLower(entryID)

	if containsAny(lower, v.AlreadyExists) {
		return models.OutcomeAlreadyExists
	}
	if matchesWithID(lower, id, v.NotFound) {
		return models.OutcomeNotFound
	}
	if matchesWithID(lower, id, v.Success) {
		return models.OutcomeSuccess
	}
	return models.OutcomeTransient
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// matchesWithID requires the phrase and the entry id on the same line, so a
// success message for a different entry in the same blob never matches.
func matchesWithID(text, id string, phrases []string) bool {
	if id == "" {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, id) {
			continue
		}
		for _, p := range phrases {
			if strings.Contains(line, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}
