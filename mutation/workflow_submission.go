package mutation

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
	"github.com/joseph-ayodele/indico-client/storage"
)

const (
	workflowSubmissionOp = "WorkflowSubmission"
	workflowSubmissionQL = `mutation WorkflowSubmission($workflowId: Int!, $files: [FileInput]!) {
  workflowSubmission(workflowId: $workflowId, files: $files) {
    submissionIds
  }
}`

	workflowURLSubmissionOp = "WorkflowUrlSubmission"
	workflowURLSubmissionQL = `mutation WorkflowUrlSubmission($workflowId: Int!, $urls: [String]!) {
  workflowUrlSubmission(workflowId: $workflowId, urls: $urls) {
    submissionIds
  }
}`
)

// WorkflowSubmission submits documents to a workflow. Configure it with
// WorkflowID and exactly one of Files or URLs, then call Execute.
type WorkflowSubmission struct {
	gql      client.Executor
	uploader storage.Uploader
	logger   *slog.Logger

	workflowID int
	files      []string
	urls       []string
}

func NewWorkflowSubmission(c *client.Client) *WorkflowSubmission {
	return NewWorkflowSubmissionWith(c, storage.NewFileUploader(c), c.Logger())
}

// NewWorkflowSubmissionWith builds a submission over any executor and uploader.
func NewWorkflowSubmissionWith(gql client.Executor, uploader storage.Uploader, logger *slog.Logger) *WorkflowSubmission {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowSubmission{gql: gql, uploader: uploader, logger: logger}
}

func (w *WorkflowSubmission) WorkflowID(id int) *WorkflowSubmission {
	w.workflowID = id
	return w
}

func (w *WorkflowSubmission) Files(paths ...string) *WorkflowSubmission {
	w.files = paths
	return w
}

func (w *WorkflowSubmission) URLs(urls ...string) *WorkflowSubmission {
	w.urls = urls
	return w
}

// Execute checks the configuration and runs the submission. It returns the
// submission ids in the order the service reports them.
func (w *WorkflowSubmission) Execute(ctx context.Context) ([]int, error) {
	switch {
	case len(w.files) == 0 && len(w.urls) == 0:
		return nil, client.InvalidArgumentf(workflowSubmissionOp, "one of 'files' or 'urls' must be specified")
	case len(w.files) > 0 && len(w.urls) > 0:
		return nil, client.InvalidArgumentf(workflowSubmissionOp, "only one of 'files' or 'urls' must be specified")
	}
	in := FromURLs(w.urls...)
	if len(w.files) > 0 {
		in = FromFiles(w.files...)
	}
	return w.Submit(ctx, w.workflowID, in)
}

// Submit runs one submission of in against workflowID.
func (w *WorkflowSubmission) Submit(ctx context.Context, workflowID int, in SubmissionInput) ([]int, error) {
	if workflowID <= 0 {
		return nil, client.InvalidArgumentf(workflowSubmissionOp, "workflow id must be positive, got %d", workflowID)
	}
	if !in.valid() {
		return nil, client.InvalidArgumentf(workflowSubmissionOp, "one of 'files' or 'urls' must be specified")
	}

	start := time.Now()
	var (
		req   client.Request
		field string
	)
	switch in.kind {
	case InputFiles:
		metas, err := w.uploader.Upload(ctx, in.values)
		if err != nil {
			w.logger.Error("indico.workflow_submission.upload_error", "workflow_id", workflowID, "error", err)
			return nil, client.UploadFailure(workflowSubmissionOp, err)
		}
		req = client.Request{
			OperationName: workflowSubmissionOp,
			Query:         workflowSubmissionQL,
			Variables: map[string]any{
				"workflowId": workflowID,
				"files":      entity.FileInputs(metas),
			},
		}
		field = "workflowSubmission"
	case InputURLs:
		req = client.Request{
			OperationName: workflowURLSubmissionOp,
			Query:         workflowURLSubmissionQL,
			Variables: map[string]any{
				"workflowId": workflowID,
				"urls":       in.values,
			},
		}
		field = "workflowUrlSubmission"
	}

	var data map[string]*struct {
		SubmissionIDs []int `json:"submissionIds"`
	}
	if err := client.Call(ctx, w.gql, req, &data); err != nil {
		return nil, err
	}
	payload := data[field]
	if payload == nil {
		return nil, client.NewError(client.ErrRemoteOperationFailed, req.OperationName, "response is missing "+field, nil)
	}

	w.logger.Info("indico.workflow_submission.ok",
		"workflow_id", workflowID,
		"input_kind", in.kind.String(),
		"inputs", len(in.values),
		"submissions", len(payload.SubmissionIDs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return payload.SubmissionIDs, nil
}
