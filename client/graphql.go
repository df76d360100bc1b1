package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const graphQLPath = "/graph/api/graphql"

// Request is one GraphQL operation.
type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// GraphQLError is one entry of a response "errors" list.
type GraphQLError struct {
	Message    string          `json:"message"`
	Path       []any           `json:"path,omitempty"`
	Locations  []ErrorLocation `json:"locations,omitempty"`
	Extensions map[string]any  `json:"extensions,omitempty"`
}

type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Response is the undecoded result of a GraphQL operation. Errors reported by
// the service are kept here for the operation to turn into an error.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *Response) ErrorMessages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

// Decode unmarshals the data member into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return errors.New("response has no data")
	}
	return json.Unmarshal(r.Data, v)
}

// Executor runs GraphQL operations. *Client implements it.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

var _ Executor = (*Client)(nil)

// Execute posts req to the GraphQL endpoint and blocks until the response
// arrives. GraphQL errors are returned inside the Response, not as err.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	op := req.OperationName
	if op == "" {
		op = "anonymous"
	}
	reqID := RequestIDFromContext(ctx)
	ctx = WithRequestID(ctx, reqID)
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "indico.graphql "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", op),
			attribute.String("indico.request_id", reqID),
		),
	)
	defer span.End()

	c.logger.Info("indico.graphql.request", "req_id", reqID, "operation", op)

	raw, statusCode, err := c.PostJSON(ctx, graphQLPath, req)
	if err != nil {
		// Some GraphQL servers answer failed operations with a 4xx and a
		// regular errors body; surface those as remote errors.
		if statusCode != 0 && KindOf(err) == ErrTransport {
			var resp Response
			if jerr := json.Unmarshal(raw, &resp); jerr == nil && resp.HasErrors() {
				c.logResult(span, reqID, op, &resp, start)
				return &resp, nil
			}
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		c.logger.Error("indico.graphql.http_error",
			"req_id", reqID, "operation", op, "status", statusCode, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "decode response")
		c.logger.Error("indico.graphql.decode_error",
			"req_id", reqID, "operation", op, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, NewError(ErrTransport, op, "decode graphql response", err)
	}

	c.logResult(span, reqID, op, &resp, start)
	return &resp, nil
}

func (c *Client) logResult(span trace.Span, reqID, op string, resp *Response, start time.Time) {
	if resp.HasErrors() {
		span.SetStatus(otelcodes.Error, fmt.Sprintf("%d graphql errors", len(resp.Errors)))
		c.logger.Warn("indico.graphql.errors",
			"req_id", reqID, "operation", op, "errors", len(resp.Errors),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	c.logger.Info("indico.graphql.ok",
		"req_id", reqID, "operation", op,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// Call runs req on gql and decodes the data member into out. GraphQL errors
// become one ErrRemoteOperationFailed listing every message in order.
func Call(ctx context.Context, gql Executor, req Request, out any) error {
	resp, err := gql.Execute(ctx, req)
	if err != nil {
		return err
	}
	if resp.HasErrors() {
		return RemoteErrors(req.OperationName, resp.ErrorMessages())
	}
	if err := resp.Decode(out); err != nil {
		return NewError(ErrRemoteOperationFailed, req.OperationName, "decode response", err)
	}
	return nil
}
