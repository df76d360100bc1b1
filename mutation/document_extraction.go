package mutation

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
	"github.com/joseph-ayodele/indico-client/storage"
)

const (
	documentExtractionOp = "DocumentExtraction"
	documentExtractionQL = `mutation DocumentExtraction($files: [FileInput]!, $jsonConfig: JSONString) {
  documentExtraction(files: $files, jsonConfig: $jsonConfig) {
    jobIds
  }
}`
)

// DocumentExtraction uploads files and starts one extraction job per file.
type DocumentExtraction struct {
	gql      client.Executor
	uploader storage.Uploader
	logger   *slog.Logger

	files   []string
	options entity.ExtractionOptions
}

func NewDocumentExtraction(c *client.Client) *DocumentExtraction {
	return NewDocumentExtractionWith(c, storage.NewFileUploader(c), c.Logger())
}

func NewDocumentExtractionWith(gql client.Executor, uploader storage.Uploader, logger *slog.Logger) *DocumentExtraction {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentExtraction{gql: gql, uploader: uploader, logger: logger}
}

func (d *DocumentExtraction) Files(paths ...string) *DocumentExtraction {
	d.files = paths
	return d
}

func (d *DocumentExtraction) Options(opts entity.ExtractionOptions) *DocumentExtraction {
	d.options = opts
	return d
}

// Execute returns the ids of the started jobs, one per file.
func (d *DocumentExtraction) Execute(ctx context.Context) ([]string, error) {
	if len(d.files) == 0 {
		return nil, client.InvalidArgumentf(documentExtractionOp, "'files' must be specified")
	}
	start := time.Now()

	config, err := json.Marshal(d.options)
	if err != nil {
		return nil, client.NewError(client.ErrInvalidArgument, documentExtractionOp, "encode options", err)
	}

	metas, err := d.uploader.Upload(ctx, d.files)
	if err != nil {
		d.logger.Error("indico.document_extraction.upload_error", "files", len(d.files), "error", err)
		return nil, client.UploadFailure(documentExtractionOp, err)
	}

	req := client.Request{
		OperationName: documentExtractionOp,
		Query:         documentExtractionQL,
		Variables: map[string]any{
			"files":      entity.FileInputs(metas),
			"jsonConfig": string(config),
		},
	}
	var data struct {
		DocumentExtraction *struct {
			JobIDs []string `json:"jobIds"`
		} `json:"documentExtraction"`
	}
	if err := client.Call(ctx, d.gql, req, &data); err != nil {
		return nil, err
	}
	if data.DocumentExtraction == nil {
		return nil, client.NewError(client.ErrRemoteOperationFailed, documentExtractionOp, "response is missing documentExtraction", nil)
	}

	d.logger.Info("indico.document_extraction.ok",
		"files", len(d.files),
		"jobs", len(data.DocumentExtraction.JobIDs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data.DocumentExtraction.JobIDs, nil
}
