package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
)

const (
	jobStatusOp = "JobStatus"
	jobStatusQL = `query JobStatus($id: String) {
  job(id: $id) {
    id
    status
    ready
    result
  }
}`

	defaultPollInterval = time.Second
)

// JobQuery reads the state of asynchronous jobs.
type JobQuery struct {
	gql    client.Executor
	logger *slog.Logger
}

func NewJobQuery(gql client.Executor, logger *slog.Logger) *JobQuery {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQuery{gql: gql, logger: logger}
}

func (q *JobQuery) Execute(ctx context.Context, id string) (entity.Job, error) {
	if strings.TrimSpace(id) == "" {
		return entity.Job{}, client.InvalidArgumentf(jobStatusOp, "job id is required")
	}
	req := client.Request{
		OperationName: jobStatusOp,
		Query:         jobStatusQL,
		Variables:     map[string]any{"id": id},
	}
	var data struct {
		Job *struct {
			ID     string           `json:"id"`
			Status entity.JobStatus `json:"status"`
			Ready  bool             `json:"ready"`
			Result *string          `json:"result"`
		} `json:"job"`
	}
	if err := client.Call(ctx, q.gql, req, &data); err != nil {
		return entity.Job{}, err
	}
	if data.Job == nil {
		return entity.Job{}, client.NewError(client.ErrRemoteOperationFailed, jobStatusOp, "job "+id+" not found", nil)
	}

	job := entity.Job{ID: data.Job.ID, Status: data.Job.Status, Ready: data.Job.Ready}
	if data.Job.Result != nil && *data.Job.Result != "" {
		// result is a JSONString; keep it only when it holds valid JSON.
		if json.Valid([]byte(*data.Job.Result)) {
			job.Result = json.RawMessage(*data.Job.Result)
		} else {
			b, _ := json.Marshal(*data.Job.Result)
			job.Result = b
		}
	}
	return job, nil
}

// Wait polls the job every interval until it reaches a terminal state or
// ctx is done.
func (q *JobQuery) Wait(ctx context.Context, id string, interval time.Duration) (entity.Job, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := q.Execute(ctx, id)
		if err != nil {
			return entity.Job{}, err
		}
		if job.Status.Terminal() {
			q.logger.Info("indico.job.done", "job_id", id, "status", job.Status)
			return job, nil
		}
		q.logger.Debug("indico.job.pending", "job_id", id, "status", job.Status)

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}
