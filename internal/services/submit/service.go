package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/constants"
	"github.com/joseph-ayodele/indico-client/entity"
	"github.com/joseph-ayodele/indico-client/internal/async"
	"github.com/joseph-ayodele/indico-client/internal/ingest"
	"github.com/joseph-ayodele/indico-client/internal/journal"
	"github.com/joseph-ayodele/indico-client/mutation"
)

// Submitter runs one workflow submission. *mutation.WorkflowSubmission implements it.
type Submitter interface {
	Submit(ctx context.Context, workflowID int, in mutation.SubmissionInput) ([]int, error)
}

// StatusReader reads one submission. *query.SubmissionQuery implements it.
type StatusReader interface {
	Execute(ctx context.Context, id int) (entity.Submission, error)
}

// Service submits local documents or URLs and journals what was submitted.
type Service struct {
	submitter Submitter
	reader    StatusReader
	collector *ingest.Collector
	store     journal.Store
	logger    *slog.Logger
}

func NewService(sub Submitter, reader StatusReader, collector *ingest.Collector, store journal.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = ingest.NewCollector(nil, true, logger)
	}
	return &Service{
		submitter: sub,
		reader:    reader,
		collector: collector,
		store:     store,
		logger:    logger,
	}
}

// FilesRequest represents file submission parameters.
type FilesRequest struct {
	WorkflowID    int
	Paths         []string
	Dir           string
	SkipSubmitted bool // drop files whose content was already sent to this workflow
}

// Result describes one submission batch.
type Result struct {
	BatchID       uuid.UUID
	SubmissionIDs []int
	Submitted     []string
	Skipped       []string
}

// SubmitFiles collects documents, drops duplicates and submits the rest in
// a single workflow submission.
func (s *Service) SubmitFiles(ctx context.Context, req FilesRequest) (Result, error) {
	docs, err := s.collector.CollectPaths(req.Paths)
	if err != nil {
		return Result{}, client.UploadFailure("submit.files", err)
	}
	if req.Dir != "" {
		found, _, err := s.collector.CollectDirectory(req.Dir)
		if err != nil {
			return Result{}, client.UploadFailure("submit.files", err)
		}
		docs = append(docs, found...)
	}
	if len(docs) == 0 {
		return Result{}, client.InvalidArgumentf("submit.files", "no documents to submit")
	}

	seen := map[string]struct{}{}
	if req.SkipSubmitted && s.store != nil {
		if seen, err = s.store.SubmittedHashes(ctx, req.WorkflowID); err != nil {
			return Result{}, fmt.Errorf("load submitted hashes: %w", err)
		}
	}

	var res Result
	var inputs []journal.Input
	for _, d := range docs {
		if _, dup := seen[d.HashHex]; dup && req.SkipSubmitted {
			res.Skipped = append(res.Skipped, d.Path)
			continue
		}
		seen[d.HashHex] = struct{}{}
		res.Submitted = append(res.Submitted, d.Path)
		inputs = append(inputs, journal.Input{Ordinal: len(inputs), Value: d.Path, ContentHash: d.HashHex})
	}
	if len(res.Submitted) == 0 {
		s.logger.Info("submit.files.nothing_new", "workflow_id", req.WorkflowID, "skipped", len(res.Skipped))
		return res, nil
	}

	return s.run(ctx, req.WorkflowID, mutation.FromFiles(res.Submitted...), constants.InputKindFile, inputs, res)
}

// SubmitURLs submits remote documents in a single workflow submission.
func (s *Service) SubmitURLs(ctx context.Context, workflowID int, urls []string) (Result, error) {
	inputs := make([]journal.Input, 0, len(urls))
	for i, u := range urls {
		inputs = append(inputs, journal.Input{Ordinal: i, Value: u})
	}
	res := Result{Submitted: append([]string(nil), urls...)}
	return s.run(ctx, workflowID, mutation.FromURLs(urls...), constants.InputKindURL, inputs, res)
}

func (s *Service) run(ctx context.Context, workflowID int, in mutation.SubmissionInput, kind string, inputs []journal.Input, res Result) (Result, error) {
	ids, err := s.submitter.Submit(ctx, workflowID, in)
	if err != nil {
		return Result{}, err
	}
	res.BatchID = uuid.New()
	res.SubmissionIDs = ids

	if s.store == nil {
		return res, nil
	}
	err = s.store.RecordBatch(ctx, journal.Batch{
		ID:            res.BatchID,
		WorkflowID:    workflowID,
		InputKind:     kind,
		Inputs:        inputs,
		SubmissionIDs: ids,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		// The submissions exist remotely; hand the ids back with the error.
		s.logger.Error("submit.journal_error", "batch_id", res.BatchID, "error", err)
		return res, fmt.Errorf("journal batch %s: %w", res.BatchID, err)
	}
	return res, nil
}

// RefreshStats summarizes a Refresh run.
type RefreshStats struct {
	Checked int
	Failed  int
}

// Refresh reads the current status of every non-terminal journaled
// submission matching f and stores it.
func (s *Service) Refresh(ctx context.Context, f journal.Filter, workers int) (RefreshStats, error) {
	if s.store == nil || s.reader == nil {
		return RefreshStats{}, errors.New("refresh needs a journal and a status reader")
	}
	entries, err := s.store.Entries(ctx, f)
	if err != nil {
		return RefreshStats{}, err
	}

	q := async.NewWorkerQueue(s.refreshOne, s.logger,
		async.WithWorkers(workers),
		async.WithQueueSize(len(entries)+1),
		async.WithBaseContext(ctx),
	)
	var enqueueErr error
	for _, e := range entries {
		if e.Status.Terminal() {
			continue
		}
		if enqueueErr = q.Enqueue(ctx, async.Job{SubmissionID: e.SubmissionID}); enqueueErr != nil {
			break
		}
	}
	// No status write may outlive the call, so wait for every worker.
	q.Shutdown(context.WithoutCancel(ctx))

	handled, failed := q.Stats()
	stats := RefreshStats{Checked: handled, Failed: failed}
	if enqueueErr != nil {
		return stats, enqueueErr
	}
	if err := ctx.Err(); err != nil {
		s.logger.Warn("submit.refresh.cancelled", "checked", handled, "failed", failed, "error", err)
		return stats, err
	}
	s.logger.Info("submit.refresh.ok", "checked", handled, "failed", failed)
	return stats, nil
}

func (s *Service) refreshOne(ctx context.Context, job async.Job) error {
	sub, err := s.reader.Execute(ctx, job.SubmissionID)
	if err != nil {
		return err
	}
	return s.store.UpdateStatus(ctx, job.SubmissionID, constants.JournalStatus(sub.Status))
}
