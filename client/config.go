package client

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultHost              = "app.indico.io"
	DefaultProtocol          = "https"
	DefaultTimeout           = 30 * time.Second
	DefaultUploadBatchSize   = 20
	DefaultUploadConcurrency = 4

	instrumentationName = "github.com/joseph-ayodele/indico-client"
)

// Config for the Indico client.
type Config struct {
	Host              string        // default app.indico.io
	Protocol          string        // default https
	APIToken          string        // refresh token; if empty, falls back to env INDICO_API_TOKEN
	APITokenPath      string        // file holding the refresh token, read when APIToken is empty
	Timeout           time.Duration // http client timeout
	UploadBatchSize   int           // files per storage request
	UploadConcurrency int           // storage requests in flight

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
}

// Client is a handle to one Indico platform. It is safe for concurrent use;
// every call owns its own request and response.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer

	mu        sync.Mutex
	authToken string
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIToken == "" {
		cfg.APIToken = os.Getenv("INDICO_API_TOKEN")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Protocol == "" {
		cfg.Protocol = DefaultProtocol
	}
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UploadBatchSize <= 0 {
		cfg.UploadBatchSize = DefaultUploadBatchSize
	}
	if cfg.UploadConcurrency <= 0 {
		cfg.UploadConcurrency = DefaultUploadConcurrency
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}
}

// BaseURL returns protocol://host without a trailing slash.
func (c *Client) BaseURL() string {
	return c.cfg.Protocol + "://" + c.cfg.Host
}

// Config returns the effective configuration after defaults were applied.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) Tracer() trace.Tracer {
	return c.tracer
}
