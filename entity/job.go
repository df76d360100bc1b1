package entity

import "encoding/json"

// JobStatus is the state of an asynchronous platform job.
type JobStatus string

const (
	JobPending  JobStatus = "PENDING"
	JobReceived JobStatus = "RECEIVED"
	JobStarted  JobStatus = "STARTED"
	JobSuccess  JobStatus = "SUCCESS"
	JobFailure  JobStatus = "FAILURE"
	JobRejected JobStatus = "REJECTED"
	JobRevoked  JobStatus = "REVOKED"
	JobIgnored  JobStatus = "IGNORED"
	JobRetry    JobStatus = "RETRY"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobSuccess, JobFailure, JobRejected, JobRevoked, JobIgnored:
		return true
	}
	return false
}

// Job is an asynchronous unit of work such as a document extraction.
// Result holds the decoded JSONString the service returns once ready.
type Job struct {
	ID     string          `json:"id"`
	Status JobStatus       `json:"status"`
	Ready  bool            `json:"ready"`
	Result json.RawMessage `json:"result,omitempty"`
}
