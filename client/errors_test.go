package client

import (
	"errors"
	"io/fs"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorKinds(t *testing.T) {
	cause := fs.ErrNotExist
	tests := []struct {
		name string
		err  error
		kind error
		code codes.Code
		text string
	}{
		{
			name: "invalid argument",
			err:  InvalidArgumentf("WorkflowSubmission", "one of %q or %q must be specified", "files", "urls"),
			kind: ErrInvalidArgument,
			code: codes.InvalidArgument,
			text: `WorkflowSubmission: one of "files" or "urls" must be specified`,
		},
		{
			name: "upload failure",
			err:  UploadFailure("indico.upload", cause),
			kind: ErrUploadFailure,
			code: codes.Unavailable,
			text: "indico.upload: upload failure: file does not exist",
		},
		{
			name: "remote errors",
			err:  RemoteErrors("WorkflowSubmission", []string{"a", "b"}),
			kind: ErrRemoteOperationFailed,
			code: codes.Aborted,
			text: "WorkflowSubmission: failed due to following error:\na\nb",
		},
		{
			name: "unauthorized",
			err:  NewError(ErrUnauthorized, "indico.auth", "refresh token rejected", nil),
			kind: ErrUnauthorized,
			code: codes.Unauthenticated,
			text: "indico.auth: refresh token rejected",
		},
		{
			name: "transport",
			err:  NewError(ErrTransport, "indico.request", "non-2xx status: 502", nil),
			kind: ErrTransport,
			code: codes.Internal,
			text: "indico.request: non-2xx status: 502",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %v, want %v", got, tt.kind)
			}
			if got := tt.err.Error(); got != tt.text {
				t.Errorf("Error() = %q, want %q", got, tt.text)
			}
			if got := status.Code(tt.err); got != tt.code {
				t.Errorf("status.Code = %v, want %v", got, tt.code)
			}
		})
	}
}

func TestUploadFailureKeepsCause(t *testing.T) {
	err := UploadFailure("op", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("cause lost: %v", err)
	}
	if again := UploadFailure("outer", err); again != err {
		t.Errorf("UploadFailure wrapped an upload failure twice: %v", again)
	}
	if UploadFailure("op", nil) != nil {
		t.Error("UploadFailure(nil) != nil")
	}
}

func TestRemoteErrorsEmpty(t *testing.T) {
	if err := RemoteErrors("op", nil); err != nil {
		t.Errorf("RemoteErrors(nil) = %v", err)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("x")) != nil {
		t.Error("KindOf(plain error) != nil")
	}
}
