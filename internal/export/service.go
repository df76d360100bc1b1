package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/indico-client/internal/journal"
)

const sheet = "Submissions"

// Service produces XLSX bytes for journal exports.
type Service struct {
	store  journal.Store
	logger *slog.Logger
}

func NewService(store journal.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportJournalXLSX returns an XLSX workbook (as bytes) with one row per
// journaled submission matching f.
func (s *Service) ExportJournalXLSX(ctx context.Context, f journal.Filter) ([]byte, error) {
	start := time.Now()

	entries, err := s.store.Entries(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	x := excelize.NewFile()
	defer func() { _ = x.Close() }()
	// NewFile starts with one default sheet; rename it.
	if err := x.SetSheetName(x.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headers := []string{
		"Submission ID",
		"Workflow ID",
		"Status",
		"Input Kind",
		"Inputs",
		"Batch ID",
		"Submitted At",
		"Updated At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = x.SetCellValue(sheet, cell, h)
	}

	inputsByBatch := map[uuid.UUID]string{}
	row := 2
	for _, e := range entries {
		inputs, ok := inputsByBatch[e.BatchID]
		if !ok {
			rows, err := s.store.Inputs(ctx, e.BatchID)
			if err != nil {
				return nil, fmt.Errorf("query inputs for batch %s: %w", e.BatchID, err)
			}
			values := make([]string, 0, len(rows))
			for _, in := range rows {
				values = append(values, in.Value)
			}
			inputs = strings.Join(values, "\n")
			inputsByBatch[e.BatchID] = inputs
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = x.SetCellValue(sheet, cell, v)
		}
		write(1, e.SubmissionID)
		write(2, e.WorkflowID)
		write(3, string(e.Status))
		write(4, e.InputKind)
		write(5, truncate(inputs, 1000))
		write(6, e.BatchID.String())
		write(7, e.CreatedAt.Format(time.RFC3339))
		write(8, e.UpdatedAt.Format(time.RFC3339))
		row++
	}

	// Widen a few columns
	_ = x.SetColWidth(sheet, "A", "B", 14) // ids
	_ = x.SetColWidth(sheet, "C", "D", 22) // status, kind
	_ = x.SetColWidth(sheet, "E", "E", 60) // inputs
	_ = x.SetColWidth(sheet, "F", "F", 38) // batch
	_ = x.SetColWidth(sheet, "G", "H", 22) // timestamps

	buf, err := x.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
