package domain

import "time"

// JobStatus represents the lifecycle state of an asynchronous job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// Job types run by the background workers
const (
	JobTypeRebuildWorld      = "update_vector_db"
	JobTypeRebuildSpecialist = "update_specialist_db"
	JobTypeIndexPage         = "index_page"
	JobTypeCrosslinkPage     = "crosslink_page"
	JobTypeCrosslinkBatch    = "crosslink_batch"
	JobTypeUnlinkPage        = "unlink_page"
)

// JobRecord is the durable, pollable record of one asynchronous unit of work.
// It is created in queued, moved to processing exactly once by the worker
// that picks it up, and finishes in done or error. Records are never deleted
// by the job subsystem and never transition backward.
type JobRecord struct {
	ID      string    `json:"id"`
	Status  JobStatus `json:"status"`
	JobType string    `json:"job_type,omitempty"`
	AgentID int64     `json:"agent_id,omitempty"`
	WorldID int64     `json:"world_id,omitempty"`
	PageID  int64     `json:"page_id,omitempty"`

	Progress string `json:"progress,omitempty"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	PagesIndexed   *int           `json:"pages_indexed,omitempty"`
	SourcesIndexed *int           `json:"sources_indexed,omitempty"`
	Result         map[string]any `json:"result,omitempty"`

	Error string `json:"error,omitempty"`
}

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// CanTransition reports whether a job may move from one status to another.
// The state machine is queued -> processing -> done|error, with no backward
// edges and no transitions out of a terminal state.
func CanTransition(from, to JobStatus) bool {
	switch from {
	case JobStatusQueued:
		return to == JobStatusProcessing
	case JobStatusProcessing:
		return to == JobStatusDone || to == JobStatusError
	}
	return false
}

// IsValidJobStatus checks if a JobStatus is valid
func IsValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusQueued, JobStatusProcessing, JobStatusDone, JobStatusError:
		return true
	}
	return false
}
