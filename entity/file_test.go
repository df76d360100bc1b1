package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFileInputEncodesFilemetaAsString(t *testing.T) {
	in := NewFileInput(FileMeta{Name: "a.pdf", Path: "/uploads/1/a.pdf", UploadType: "user"})
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var wire struct {
		Filename string `json:"filename"`
		Filemeta string `json:"filemeta"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		t.Fatalf("filemeta is not a string: %s", b)
	}
	if wire.Filename != "a.pdf" {
		t.Errorf("filename = %q", wire.Filename)
	}
	var meta FileMeta
	if err := json.Unmarshal([]byte(wire.Filemeta), &meta); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in.Filemeta, meta); diff != "" {
		t.Errorf("filemeta (-want +got):\n%s", diff)
	}
}

func TestFileInputsKeepsOrder(t *testing.T) {
	metas := []FileMeta{{Name: "b"}, {Name: "a"}, {Name: "c"}}
	var names []string
	for _, in := range FileInputs(metas) {
		names = append(names, in.Filename)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, names); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for s, want := range map[JobStatus]bool{
		JobPending: false, JobStarted: false, JobRetry: false,
		JobSuccess: true, JobFailure: true, JobRevoked: true,
	} {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v", s, got)
		}
	}
	for s, want := range map[SubmissionStatus]bool{
		SubmissionProcessing: false, SubmissionPendingReview: false,
		SubmissionComplete: true, SubmissionFailed: true,
	} {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v", s, got)
		}
	}
}
