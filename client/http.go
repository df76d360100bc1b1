package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Do sends req with the platform access token attached and returns the raw
// response body. A 401 drops the cached token so the next call re-authenticates.
// Non-2xx statuses are returned with the body and an ErrTransport error.
func (c *Client) Do(ctx context.Context, req *http.Request) ([]byte, int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	raw, statusCode, err := c.send(ctx, req)
	if statusCode == http.StatusUnauthorized {
		c.resetToken()
		return raw, statusCode, NewError(ErrUnauthorized, "indico.request", "access token rejected", nil)
	}
	return raw, statusCode, err
}

// PostJSON encodes body and sends it to path (relative to BaseURL).
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, int, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(ctx, req)
}

func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, int, error) {
	reqID := RequestIDFromContext(ctx)
	start := time.Now()

	c.logger.Debug("indico.http.request",
		"req_id", reqID,
		"method", req.Method,
		"url", req.URL.String(),
		"content_length", req.ContentLength,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("indico.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, NewError(ErrTransport, "indico.request", req.Method+" "+req.URL.Path, err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("indico.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, NewError(ErrTransport, "indico.request", "read response body", err)
	}

	c.logger.Debug("indico.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, NewError(ErrTransport, "indico.request", fmt.Sprintf("non-2xx status: %d", resp.StatusCode), nil)
	}
	return raw, resp.StatusCode, nil
}
