package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeTerminal(t *testing.T) {
	tests := []struct {
		outcome   Outcome
		terminal  bool
		retryable bool
	}{
		{OutcomeSuccess, true, false},
		{OutcomeAlreadyExists, true, false},
		{OutcomeNotFound, true, false},
		{OutcomeMaxRetries, true, false},
		{OutcomeTransient, false, true},
		{OutcomeUnknown, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.outcome.Terminal())
			assert.Equal(t, tc.retryable, tc.outcome.Retryable())
		})
	}
}

func TestOutcomeFrom(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeFrom("SUCCESS"))
	assert.Equal(t, OutcomeUnknown, OutcomeFrom("something else"))
}

func TestResolveIsSetOnce(t *testing.T) {
	e := &FileEntry{ID: "a1", FileName: "s.bam"}
	assert.False(t, e.Ready)

	e.Resolve("/data/uBam/run1")
	assert.True(t, e.Ready)
	assert.Equal(t, "/data/uBam/run1", e.ResolvedDir)

	e.Resolve("/elsewhere")
	assert.Equal(t, "/data/uBam/run1", e.ResolvedDir)
}
