package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/joseph-ayodele/indico-client/client"
)

// storageURIPrefix marks result locations returned by jobs and submissions.
const storageURIPrefix = "indico-file:///storage"

// Retriever downloads stored objects such as extraction and submission results.
type Retriever struct {
	client *client.Client
}

func NewRetriever(c *client.Client) *Retriever {
	return &Retriever{client: c}
}

func (r *Retriever) Retrieve(ctx context.Context, storagePath string) ([]byte, error) {
	p := strings.TrimPrefix(storagePath, storageURIPrefix)
	if strings.TrimSpace(p) == "" {
		return nil, client.InvalidArgumentf("indico.retrieve", "storage path is required")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.client.BaseURL()+"/storage"+p, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	raw, _, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// RetrieveJSON retrieves storagePath and decodes it into v.
func (r *Retriever) RetrieveJSON(ctx context.Context, storagePath string, v any) error {
	raw, err := r.Retrieve(ctx, storagePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", storagePath, err)
	}
	return nil
}
