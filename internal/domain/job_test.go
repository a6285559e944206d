package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{"queued to processing", JobStatusQueued, JobStatusProcessing, true},
		{"processing to done", JobStatusProcessing, JobStatusDone, true},
		{"processing to error", JobStatusProcessing, JobStatusError, true},
		{"queued to done skips processing", JobStatusQueued, JobStatusDone, false},
		{"done back to processing", JobStatusDone, JobStatusProcessing, false},
		{"error back to queued", JobStatusError, JobStatusQueued, false},
		{"done to error", JobStatusDone, JobStatusError, false},
		{"processing to queued", JobStatusProcessing, JobStatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusProcessing.Terminal())
	assert.True(t, JobStatusDone.Terminal())
	assert.True(t, JobStatusError.Terminal())
}

func TestIsValidJobStatus(t *testing.T) {
	for _, s := range []JobStatus{JobStatusQueued, JobStatusProcessing, JobStatusDone, JobStatusError} {
		assert.True(t, IsValidJobStatus(s))
	}
	assert.False(t, IsValidJobStatus("cancelled"))
	assert.False(t, IsValidJobStatus(""))
}

func TestValidatePage(t *testing.T) {
	page := &Page{ID: 1, WorldID: 2, ConceptID: 3, Name: "Ventrue"}
	assert.NoError(t, ValidatePage(page))

	assert.Error(t, ValidatePage(nil))
	assert.Error(t, ValidatePage(&Page{WorldID: 2, ConceptID: 3}))
	assert.Error(t, ValidatePage(&Page{Name: "Ventrue", ConceptID: 3}))
	assert.Error(t, ValidatePage(&Page{Name: "Ventrue", WorldID: 2}))
}
