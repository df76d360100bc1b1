package mutation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/joseph-ayodele/indico-client/client"
	"github.com/joseph-ayodele/indico-client/entity"
)

// fakeExecutor records every request and answers with a canned response.
type fakeExecutor struct {
	mu       sync.Mutex
	requests []client.Request
	resp     *client.Response
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, req client.Request) (*client.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

func (f *fakeExecutor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func dataResponse(data string) *client.Response {
	return &client.Response{Data: json.RawMessage(data)}
}

func errorResponse(messages ...string) *client.Response {
	resp := &client.Response{Data: json.RawMessage("null")}
	for _, m := range messages {
		resp.Errors = append(resp.Errors, client.GraphQLError{Message: m})
	}
	return resp
}

// recordingUploader returns one meta per path and remembers every call.
type recordingUploader struct {
	calls [][]string
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, paths []string) ([]entity.FileMeta, error) {
	u.calls = append(u.calls, append([]string(nil), paths...))
	if u.err != nil {
		return nil, u.err
	}
	out := make([]entity.FileMeta, 0, len(paths))
	for i, p := range paths {
		out = append(out, entity.FileMeta{Name: p, Path: fmt.Sprintf("/uploads/%d", i), UploadType: "user"})
	}
	return out, nil
}
