package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/netx"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// HTTPClient implements Client over the registry's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	timeout    time.Duration
	log        logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

// WithTimeout bounds each request. Zero disables the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the backend at baseURL,
// e.g. "http://127.0.0.1:8080".
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		log:        logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

type duplicateBody struct {
	Exists bool `json:"exists"`
}

func (c *HTTPClient) FetchAll(ctx context.Context) ([]vehicle.Record, error) {
	out := []vehicle.Record{}
	if err := c.do(ctx, http.MethodGet, "/records", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) FetchOne(ctx context.Context, id string) (vehicle.Record, error) {
	var out vehicle.Record
	if err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(id), nil, &out); err != nil {
		return vehicle.Record{}, err
	}
	return out, nil
}

// FetchIncomplete returns whatever the backend classifies as incomplete.
func (c *HTTPClient) FetchIncomplete(ctx context.Context) ([]vehicle.Record, error) {
	out := []vehicle.Record{}
	if err := c.do(ctx, http.MethodGet, "/records/incomplete", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, rec vehicle.Record) (vehicle.Record, error) {
	var out vehicle.Record
	if err := c.do(ctx, http.MethodPost, "/records", payload(rec), &out); err != nil {
		return vehicle.Record{}, err
	}
	return out, nil
}

// Update sends a partial update. Empty fields in rec are left untouched by
// the backend.
func (c *HTTPClient) Update(ctx context.Context, id string, rec vehicle.Record) (vehicle.Record, error) {
	var out vehicle.Record
	if err := c.do(ctx, http.MethodPut, "/records/"+url.PathEscape(id), payload(rec), &out); err != nil {
		return vehicle.Record{}, err
	}
	return out, nil
}

// PatchStatusFlag sets exactly one completion flag.
func (c *HTTPClient) PatchStatusFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	if !stage.Valid() {
		return vehicle.Record{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown stage %q", stage)}
	}
	var out vehicle.Record
	body := map[vehicle.Stage]bool{stage: value}
	if err := c.do(ctx, http.MethodPatch, "/records/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return vehicle.Record{}, err
	}
	return out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, nil)
}

// CheckDuplicate asks whether a record with the given registration key
// exists. It has no side effects on the backend.
func (c *HTTPClient) CheckDuplicate(ctx context.Context, key string) (bool, error) {
	var out duplicateBody
	if err := c.do(ctx, http.MethodGet, "/records/check-duplicate/"+url.PathEscape(key), nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// payload strips fields the backend owns: the id and the status map.
func payload(rec vehicle.Record) vehicle.Record {
	rec.ID = ""
	rec.Status = nil
	return rec
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return ctxErr
		}
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if netx.IsNetworkError(err) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return fmt.Errorf("reading response: %w", err)
	}

	c.log.Debug(ctx, "request", "method", method, "path", path, "status", resp.StatusCode)

	if err := mapStatus(resp.StatusCode, raw); err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func mapStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		eb = errorBody{Error: strings.TrimSpace(string(body))}
	}

	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return &ValidationError{Field: eb.Field, Message: eb.Error}
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return common.ErrorNotFound
	case code == http.StatusConflict:
		return common.ErrConflict
	case code >= 500:
		return &StatusError{StatusCode: code, Message: eb.Error, kind: ErrServer}
	default:
		return &StatusError{StatusCode: code, Message: eb.Error, kind: common.ErrorInternal}
	}
}
