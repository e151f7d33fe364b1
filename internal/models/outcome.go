package models

import "time"

// Outcome classifies the result of one upload attempt, or the terminal
// state of an entry.
type Outcome string

const (
	OutcomeSuccess       Outcome = "SUCCESS"
	OutcomeAlreadyExists Outcome = "ALREADY_EXISTS"
	OutcomeNotFound      Outcome = "NOT_FOUND_LOCALLY"
	OutcomeTransient     Outcome = "TRANSIENT_FAILURE"
	OutcomeMaxRetries    Outcome = "MAX_RETRIES_EXCEEDED"
	OutcomeUnknown       Outcome = "UNKNOWN_FAILURE"
)

// Terminal reports whether an entry with this outcome is done and must not
// be re-enqueued.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeSuccess, OutcomeAlreadyExists, OutcomeNotFound, OutcomeMaxRetries:
		return true
	}
	return false
}

// Retryable reports whether this outcome sends the entry back to the queue
// (budget permitting).
func (o Outcome) Retryable() bool {
	return o == OutcomeTransient || o == OutcomeUnknown
}

func (o Outcome) String() string { return string(o) }

// OutcomeFrom maps a serialized outcome back to its typed value. Unknown
// strings map to OutcomeUnknown so historical logs with a newer vocabulary
// still aggregate.
func OutcomeFrom(s string) Outcome {
	switch Outcome(s) {
	case OutcomeSuccess, OutcomeAlreadyExists, OutcomeNotFound,
		OutcomeTransient, OutcomeMaxRetries, OutcomeUnknown:
		return Outcome(s)
	}
	return OutcomeUnknown
}

// Report is the final aggregate produced after all workers have joined.
// It is read-only after creation.
type Report struct {
	Success       int
	AlreadyExists int
	NotFound      int
	MaxRetries    int
	Requeues      int
	Elapsed       time.Duration
	Failed        []EntryResult
}

// Total returns the number of entries that reached a terminal state.
func (r *Report) Total() int {
	return r.Success + r.AlreadyExists + r.NotFound + r.MaxRetries
}
