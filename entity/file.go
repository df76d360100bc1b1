package entity

import (
	"encoding/json"
	"fmt"
)

// FileMeta describes one file stored on the platform by an upload.
type FileMeta struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	UploadType string `json:"upload_type"`
}

// FileInput references an uploaded file in a mutation. The service types
// filemeta as a JSONString, so it is sent as an encoded string.
type FileInput struct {
	Filename string
	Filemeta FileMeta
}

func NewFileInput(meta FileMeta) FileInput {
	return FileInput{Filename: meta.Name, Filemeta: meta}
}

func (f FileInput) MarshalJSON() ([]byte, error) {
	meta, err := json.Marshal(f.Filemeta)
	if err != nil {
		return nil, fmt.Errorf("encode filemeta: %w", err)
	}
	return json.Marshal(struct {
		Filename string `json:"filename"`
		Filemeta string `json:"filemeta"`
	}{f.Filename, string(meta)})
}

// FileInputs maps upload results to mutation inputs, keeping order.
func FileInputs(metas []FileMeta) []FileInput {
	out := make([]FileInput, 0, len(metas))
	for _, m := range metas {
		out = append(out, NewFileInput(m))
	}
	return out
}
