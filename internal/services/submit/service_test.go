package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/constants"
	"github.com/joseph-ayodele/indico-client/entity"
	"github.com/joseph-ayodele/indico-client/internal/journal"
	"github.com/joseph-ayodele/indico-client/mutation"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeSubmitter hands out increasing submission ids, one per input.
type fakeSubmitter struct {
	next  int
	calls []mutation.SubmissionInput
	err   error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ int, in mutation.SubmissionInput) ([]int, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]int, 0, len(in.Values()))
	for range in.Values() {
		f.next++
		ids = append(ids, f.next)
	}
	return ids, nil
}

type fakeReader struct {
	mu     sync.Mutex
	status map[int]entity.SubmissionStatus
	reads  []int
}

func (f *fakeReader) Execute(_ context.Context, id int) (entity.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, id)
	s, ok := f.status[id]
	if !ok {
		return entity.Submission{}, fmt.Errorf("submission %d not found", id)
	}
	return entity.Submission{ID: id, Status: s}, nil
}

func openStore(t *testing.T) journal.Store {
	t.Helper()
	s, err := journal.Open(context.Background(), journal.Config{URL: "sqlite://" + filepath.Join(t.TempDir(), "j.db")}, quiet)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSubmitFilesJournalsAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sub := &fakeSubmitter{next: 100}
	svc := NewService(sub, nil, nil, store, quiet)
	dir := writeDocs(t, map[string]string{"a.pdf": "A", "b.pdf": "B"})

	first, err := svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 42, Dir: dir, SkipSubmitted: true})
	if err != nil {
		t.Fatalf("first SubmitFiles: %v", err)
	}
	if diff := cmp.Diff([]int{101, 102}, first.SubmissionIDs); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}

	// c.pdf duplicates a.pdf's content; only d.pdf is new.
	if err := os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("A"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "d.pdf"), []byte("D"), 0o600); err != nil {
		t.Fatal(err)
	}
	second, err := svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 42, Dir: dir, SkipSubmitted: true})
	if err != nil {
		t.Fatalf("second SubmitFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "d.pdf")}
	if diff := cmp.Diff(want, second.Submitted); diff != "" {
		t.Errorf("submitted (-want +got):\n%s", diff)
	}
	if len(second.Skipped) != 3 {
		t.Errorf("skipped = %v, want a, b and c", second.Skipped)
	}

	entries, err := store.Entries(ctx, journal.Filter{WorkflowID: 42})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	inputs, err := store.Inputs(ctx, second.BatchID)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 1 || inputs[0].Value != want[0] || inputs[0].ContentHash == "" {
		t.Errorf("inputs = %+v", inputs)
	}
}

func TestSubmitFilesNothingNew(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sub := &fakeSubmitter{}
	svc := NewService(sub, nil, nil, store, quiet)
	dir := writeDocs(t, map[string]string{"a.pdf": "A"})
	path := filepath.Join(dir, "a.pdf")

	if _, err := svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 1, Paths: []string{path}}); err != nil {
		t.Fatal(err)
	}
	res, err := svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 1, Paths: []string{path}, SkipSubmitted: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.SubmissionIDs) != 0 || len(sub.calls) != 1 {
		t.Errorf("resubmitted: %+v, calls=%d", res, len(sub.calls))
	}

	// Another workflow has not seen the file yet.
	res, err = svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 2, Paths: []string{path}, SkipSubmitted: true})
	if err != nil || len(res.SubmissionIDs) != 1 {
		t.Errorf("workflow 2 = %+v, %v", res, err)
	}
}

func TestSubmitFilesErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeSubmitter{}, nil, nil, nil, quiet)

	_, err := svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 1, Paths: []string{filepath.Join(t.TempDir(), "nope.pdf")}})
	if !errors.Is(err, client.ErrUploadFailure) {
		t.Errorf("missing path err = %v, want ErrUploadFailure", err)
	}
	_, err = svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 1, Dir: t.TempDir()})
	if !errors.Is(err, client.ErrInvalidArgument) {
		t.Errorf("empty dir err = %v, want ErrInvalidArgument", err)
	}

	remote := client.RemoteErrors("WorkflowSubmission", []string{"nope"})
	svc = NewService(&fakeSubmitter{err: remote}, nil, nil, openStore(t), quiet)
	dir := writeDocs(t, map[string]string{"a.pdf": "A"})
	_, err = svc.SubmitFiles(ctx, FilesRequest{WorkflowID: 1, Dir: dir})
	if !errors.Is(err, client.ErrRemoteOperationFailed) {
		t.Errorf("remote err = %v", err)
	}
}

func TestSubmitURLs(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sub := &fakeSubmitter{next: 199}
	svc := NewService(sub, nil, nil, store, quiet)

	res, err := svc.SubmitURLs(ctx, 7, []string{"https://x/1.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{200}, res.SubmissionIDs); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	if sub.calls[0].Kind() != mutation.InputURLs {
		t.Errorf("kind = %v", sub.calls[0].Kind())
	}
	entries, err := store.Entries(ctx, journal.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].InputKind != constants.InputKindURL {
		t.Errorf("entries = %+v", entries)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	sub := &fakeSubmitter{}
	reader := &fakeReader{status: map[int]entity.SubmissionStatus{
		1: entity.SubmissionComplete,
		2: entity.SubmissionPendingReview,
	}}
	svc := NewService(sub, reader, nil, store, quiet)

	if _, err := svc.SubmitURLs(ctx, 3, []string{"https://x/1", "https://x/2", "https://x/3"}); err != nil {
		t.Fatal(err)
	}
	stats, err := svc.Refresh(ctx, journal.Filter{}, 2)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if stats.Checked != 3 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 3 checked, 1 failed", stats)
	}

	entries, err := store.Entries(ctx, journal.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	got := map[int]constants.JournalStatus{}
	for _, e := range entries {
		got[e.SubmissionID] = e.Status
	}
	want := map[int]constants.JournalStatus{
		1: constants.JournalStatusComplete,
		2: constants.JournalStatusPendingReview,
		3: constants.JournalStatusSubmitted,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}

	// Submission 1 is now terminal and is not read again.
	reader.reads = nil
	if _, err := svc.Refresh(ctx, journal.Filter{}, 1); err != nil {
		t.Fatal(err)
	}
	for _, id := range reader.reads {
		if id == 1 {
			t.Errorf("terminal submission re-read: %v", reader.reads)
		}
	}
}

func TestRefreshNeedsJournal(t *testing.T) {
	svc := NewService(&fakeSubmitter{}, &fakeReader{}, nil, nil, quiet)
	if _, err := svc.Refresh(context.Background(), journal.Filter{}, 1); err == nil {
		t.Error("Refresh without a journal succeeded")
	}
}

// blockingReader holds every read until its context ends.
type blockingReader struct {
	running   atomic.Int32
	cancelled atomic.Int32
}

func (b *blockingReader) Execute(ctx context.Context, id int) (entity.Submission, error) {
	b.running.Add(1)
	defer b.running.Add(-1)
	select {
	case <-ctx.Done():
		b.cancelled.Add(1)
		return entity.Submission{}, ctx.Err()
	case <-time.After(5 * time.Second):
		return entity.Submission{ID: id, Status: entity.SubmissionComplete}, nil
	}
}

func TestRefreshStopsWorkersOnCancel(t *testing.T) {
	store := openStore(t)
	reader := &blockingReader{}
	svc := NewService(&fakeSubmitter{}, reader, nil, store, quiet)
	if _, err := svc.SubmitURLs(context.Background(), 3, []string{"https://x/1", "https://x/2", "https://x/3", "https://x/4"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	stats, err := svc.Refresh(ctx, journal.Filter{}, 2)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Refresh took %v after cancellation", elapsed)
	}
	if n := reader.running.Load(); n != 0 {
		t.Errorf("%d reads still running after Refresh returned", n)
	}
	if reader.cancelled.Load() == 0 {
		t.Error("no read saw the cancellation")
	}
	if stats.Checked != 4 || stats.Failed != 4 {
		t.Errorf("stats = %+v, want all 4 jobs failed", stats)
	}

	entries, err := store.Entries(context.Background(), journal.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Status != constants.JournalStatusSubmitted {
			t.Errorf("submission %d status = %s after cancelled refresh", e.SubmissionID, e.Status)
		}
	}
}
