// Package journal keeps a local record of workflow submissions made through
// the CLI so they can be refreshed, deduplicated and exported later.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/indico-client/constants"
)

// Batch is one WorkflowSubmission call and everything it returned.
type Batch struct {
	ID            uuid.UUID
	WorkflowID    int
	InputKind     string // constants.InputKindFile or constants.InputKindURL
	Inputs        []Input
	SubmissionIDs []int
	CreatedAt     time.Time
}

// Input is one file path or URL of a batch. Ordinal is its position in the
// submitted list and must be unique within the batch.
type Input struct {
	Ordinal     int
	Value       string
	ContentHash string // sha256 hex for files, empty for URLs
}

// Entry is one submission id returned by the service.
type Entry struct {
	SubmissionID int
	BatchID      uuid.UUID
	WorkflowID   int
	InputKind    string
	Status       constants.JournalStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter narrows Entries. Zero fields match everything.
type Filter struct {
	WorkflowID int
	Status     constants.JournalStatus
	Since      *time.Time
}

type Store interface {
	RecordBatch(ctx context.Context, b Batch) error
	Entries(ctx context.Context, f Filter) ([]Entry, error)
	Inputs(ctx context.Context, batchID uuid.UUID) ([]Input, error)
	UpdateStatus(ctx context.Context, submissionID int, status constants.JournalStatus) error
	// SubmittedHashes returns the content hashes already submitted to workflowID.
	SubmittedHashes(ctx context.Context, workflowID int) (map[string]struct{}, error)
	Close() error
}
