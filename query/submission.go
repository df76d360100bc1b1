package query

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
)

const (
	getSubmissionOp = "GetSubmission"
	getSubmissionQL = `query GetSubmission($submissionId: Int!) {
  submission(id: $submissionId) {
    id
    datasetId
    workflowId
    status
    inputFile
    inputFilename
    resultFile
    retrieved
    errors
  }
}`
)

// SubmissionQuery reads workflow submissions.
type SubmissionQuery struct {
	gql    client.Executor
	logger *slog.Logger
}

func NewSubmissionQuery(gql client.Executor, logger *slog.Logger) *SubmissionQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionQuery{gql: gql, logger: logger}
}

func (q *SubmissionQuery) Execute(ctx context.Context, id int) (entity.Submission, error) {
	if id <= 0 {
		return entity.Submission{}, client.InvalidArgumentf(getSubmissionOp, "submission id must be positive, got %d", id)
	}
	req := client.Request{
		OperationName: getSubmissionOp,
		Query:         getSubmissionQL,
		Variables:     map[string]any{"submissionId": id},
	}
	var data struct {
		Submission *entity.Submission `json:"submission"`
	}
	if err := client.Call(ctx, q.gql, req, &data); err != nil {
		return entity.Submission{}, err
	}
	if data.Submission == nil {
		return entity.Submission{}, client.NewError(client.ErrRemoteOperationFailed, getSubmissionOp, "submission "+strconv.Itoa(id)+" not found", nil)
	}
	q.logger.Debug("indico.submission.ok", "submission_id", id, "status", data.Submission.Status)
	return *data.Submission, nil
}
