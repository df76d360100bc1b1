package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
)

const (
	storePath = "/storage/files/store"
	uploadOp  = "indico.upload"
)

// Uploader stores local files on the platform and returns their metadata in
// the order of paths.
type Uploader interface {
	Upload(ctx context.Context, paths []string) ([]entity.FileMeta, error)
}

// FileUploader uploads through the platform storage endpoint. Paths are sent
// in batches; batches run concurrently and results keep input order.
type FileUploader struct {
	client      *client.Client
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

var _ Uploader = (*FileUploader)(nil)

func NewFileUploader(c *client.Client) *FileUploader {
	cfg := c.Config()
	return &FileUploader{
		client:      c,
		batchSize:   cfg.UploadBatchSize,
		concurrency: cfg.UploadConcurrency,
		logger:      c.Logger(),
	}
}

func (u *FileUploader) Upload(ctx context.Context, paths []string) ([]entity.FileMeta, error) {
	if len(paths) == 0 {
		return nil, client.InvalidArgumentf(uploadOp, "no files to upload")
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, client.UploadFailure(uploadOp, err)
		}
		if st.IsDir() {
			return nil, client.UploadFailure(uploadOp, fmt.Errorf("%s is a directory", p))
		}
	}

	start := time.Now()
	batches := chunk(paths, u.batchSize)
	results := make([][]entity.FileMeta, len(batches))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(u.concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		eg.Go(func() error {
			metas, err := u.uploadBatch(gctx, i, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = metas
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		u.logger.Error("indico.upload.failed", "files", len(paths), "error", err)
		return nil, client.UploadFailure(uploadOp, err)
	}

	out := make([]entity.FileMeta, 0, len(paths))
	for _, r := range results {
		out = append(out, r...)
	}
	u.logger.Info("indico.upload.ok",
		"files", len(out),
		"batches", len(batches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (u *FileUploader) uploadBatch(ctx context.Context, index int, paths []string) ([]entity.FileMeta, error) {
	ctx, span := u.client.Tracer().Start(ctx, "indico.upload.batch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("indico.upload.batch", index),
			attribute.Int("indico.upload.files", len(paths)),
		),
	)
	defer span.End()

	metas, err := u.sendBatch(ctx, paths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	u.logger.Debug("indico.upload.batch_ok", "batch", index, "files", len(metas))
	return metas, nil
}

func (u *FileUploader) sendBatch(ctx context.Context, paths []string) ([]entity.FileMeta, error) {
	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeParts(mw, paths)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.client.BaseURL()+storePath, pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, _, err := u.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateUploadResponse(raw); err != nil {
		return nil, fmt.Errorf("unexpected upload response: %w", err)
	}

	var metas []entity.FileMeta
	if err := json.Unmarshal(raw, &metas); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if len(metas) != len(paths) {
		return nil, fmt.Errorf("uploaded %d files, storage returned %d", len(paths), len(metas))
	}
	return metas, nil
}

func writeParts(mw *multipart.Writer, paths []string) error {
	for _, p := range paths {
		if err := writePart(mw, p); err != nil {
			return err
		}
	}
	return nil
}

func writePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	name := filepath.Base(path)
	part, err := mw.CreateFormFile(name, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

func chunk(paths []string, size int) [][]string {
	if size <= 0 {
		size = len(paths)
	}
	var out [][]string
	for start := 0; start < len(paths); start += size {
		end := min(start+size, len(paths))
		out = append(out, paths[start:end])
	}
	return out
}
