// Package client is the thin HTTP boundary to the prediction service. Every
// operation is a single round-trip with no retry and no timeout beyond the
// transport default: this is an interactive client, and the human is the
// retry loop.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-predict/internal/catalog/parser"
	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/present"
)

// RequestError normalizes transport, status, and decode failures on any
// endpoint into a single error channel.
type RequestError struct {
	// Op names the failing operation: "predict", "health", ...
	Op string
	// Status is the HTTP status code, or 0 when the request never completed.
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("client: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Health is the decoded GET /health body.
type Health struct {
	Status string `json:"status"`
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithParser injects a custom catalog parser.
func WithParser(p catalog.Parser) Option {
	return func(c *Client) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithLogger injects a structured logger; the default discards nothing but
// logs at debug level only.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCatalogSource routes FetchCatalog through a document loader instead of
// GET /schema. Callers use this to work from a saved schema file or an
// embedded filesystem while the service itself stays the prediction target.
func WithCatalogSource(l catalog.Loader, src catalog.Source) Option {
	return func(c *Client) {
		if l != nil && src != nil {
			c.loader = l
			c.schemaSrc = src
		}
	}
}

// Client talks to one prediction service.
type Client struct {
	base      string
	http      *http.Client
	parser    catalog.Parser
	log       *slog.Logger
	loader    catalog.Loader
	schemaSrc catalog.Source
}

// New constructs a Client for the given base origin. A trailing slash is
// stripped so paths concatenate cleanly.
func New(base string, options ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   http.DefaultClient,
		parser: parser.New(catalog.NewParserOptions()),
		log:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Base returns the configured origin.
func (c *Client) Base() string {
	return c.base
}

// FetchCatalog obtains the schema document and parses the result. The
// document comes from GET /schema, or from the configured catalog source when
// WithCatalogSource was given. Both the fetch and the parse failure modes
// surface as catalog.ErrUnavailable so callers can degrade to an empty model
// list.
func (c *Client) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	doc, err := c.schemaDocument(ctx)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	cat, err := c.parser.Catalog(ctx, doc)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	c.log.DebugContext(ctx, "catalog fetched", slog.Int("models", cat.Len()))
	return cat, nil
}

// schemaDocument resolves the raw schema document, preferring the injected
// loader over the network.
func (c *Client) schemaDocument(ctx context.Context) (catalog.Document, error) {
	if c.loader != nil {
		return c.loader.Load(ctx, c.schemaSrc)
	}

	body, err := c.do(ctx, "schema", http.MethodGet, "/schema", nil)
	if err != nil {
		return catalog.Document{}, err
	}
	return catalog.NewDocument(catalog.SourceFromURL(c.base+"/schema"), body)
}

// Predict performs POST /predict. The response body is decoded as opaque
// structured data; interpretation belongs to the presenter.
func (c *Client) Predict(ctx context.Context, p payload.Payload) (present.Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, &RequestError{Op: "predict", Err: err}
	}

	raw, err := c.do(ctx, "predict", http.MethodPost, "/predict", body)
	if err != nil {
		return nil, err
	}

	var result present.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &RequestError{Op: "predict", Err: fmt.Errorf("decode response: %w", err)}
	}
	return result, nil
}

// batchResponse mirrors the POST /batch_predict body.
type batchResponse struct {
	ModelType string           `json:"model_type"`
	Results   []present.Result `json:"results"`
}

// PredictBatch performs POST /batch_predict and returns the per-row results.
// Result elements omit the model_type tag; callers present them with the
// batch's kind.
func (c *Client) PredictBatch(ctx context.Context, p payload.BatchPayload) ([]present.Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, &RequestError{Op: "batch_predict", Err: err}
	}

	raw, err := c.do(ctx, "batch_predict", http.MethodPost, "/batch_predict", body)
	if err != nil {
		return nil, err
	}

	var decoded batchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &RequestError{Op: "batch_predict", Err: fmt.Errorf("decode response: %w", err)}
	}
	return decoded.Results, nil
}

// Health performs GET /health.
func (c *Client) Health(ctx context.Context) (Health, error) {
	raw, err := c.do(ctx, "health", http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}

	var health Health
	if err := json.Unmarshal(raw, &health); err != nil {
		return Health{}, &RequestError{Op: "health", Err: fmt.Errorf("decode response: %w", err)}
	}
	return health, nil
}

// Ping performs GET / and returns the service banner message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, "ping", http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}

	var banner struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &banner); err != nil {
		return "", &RequestError{Op: "ping", Err: fmt.Errorf("decode response: %w", err)}
	}
	return banner.Message, nil
}

// errorBody mirrors the service's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Errorf("unexpected status %s", resp.Status)
		var decoded errorBody
		if jsonErr := json.Unmarshal(raw, &decoded); jsonErr == nil && decoded.Error != "" {
			reason = fmt.Errorf("%s", decoded.Error)
		}
		return nil, &RequestError{Op: op, Status: resp.StatusCode, Err: reason}
	}

	c.log.DebugContext(ctx, "request completed",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
	)
	return raw, nil
}
