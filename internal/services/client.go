package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000/api"
	DefaultTimeout = 10 * time.Second

	headerRequestID = "X-Request-ID"
)

// TokenFunc returns the bearer token to attach, or "" for anonymous requests.
type TokenFunc func() string

// ClientOpts configures a [Client].
type ClientOpts struct {
	BaseURL   string
	Timeout   time.Duration
	Token     TokenFunc
	Logger    *log.Logger
	Transport http.RoundTripper

	// OnUnauthorized runs whenever the API answers 401.
	OnUnauthorized func()
}

// Client is the HTTP wrapper shared by every resource service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *log.Logger
	onUnauthorized func()
}

// NewClient builds a [Client] that attaches the current bearer token to each request.
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{token: opts.Token, base: base},
		},
		logger:         logger,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// SetUnauthorizedHandler replaces the 401 hook.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// bearerTransport adds "Authorization: Bearer <token>" via [oauth2.Transport] when a token is available.
type bearerTransport struct {
	token TokenFunc
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var token string
	if t.token != nil {
		token = t.token()
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return (&oauth2.Transport{Source: src, Base: t.base}).RoundTrip(req)
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status    int
	Message   string
	Errors    map[string][]string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

// Unwrap maps the status to a sentinel from [shared].
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	case e.Status == http.StatusForbidden:
		return shared.ErrForbidden
	case e.Status == http.StatusUnprocessableEntity:
		return shared.ErrValidation
	case e.Status >= http.StatusInternalServerError:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// Messages flattens the field errors, ordered by field name.
func (e *APIError) Messages() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var out []string
	for _, field := range fields {
		out = append(out, e.Errors[field]...)
	}
	return out
}

func parseAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{Status: status, RequestID: requestID}

	var payload struct {
		Message string                     `json:"message"`
		Error   string                     `json:"error"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}

	if len(payload.Errors) > 0 {
		apiErr.Errors = make(map[string][]string, len(payload.Errors))
		for field, raw := range payload.Errors {
			var list []string
			if err := json.Unmarshal(raw, &list); err == nil {
				apiErr.Errors[field] = list
				continue
			}
			var single string
			if err := json.Unmarshal(raw, &single); err == nil {
				apiErr.Errors[field] = []string{single}
			}
		}
	}
	return apiErr
}

// AsAPIError unwraps err into an [APIError].
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err came from a 404 response.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsValidation reports whether err came from a 422 response.
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnprocessableEntity
}

// ValidationMessages returns the flattened 422 field errors in err, if any.
func ValidationMessages(err error) []string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Messages()
	}
	return nil
}

// Describe turns err into a message for display: validation messages, the API's message,
// transport failures, then fallback. An API error without a message always yields fallback;
// other errors yield their text.
func Describe(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	apiErr, ok := AsAPIError(err)
	switch {
	case ok && apiErr.Status == http.StatusUnprocessableEntity && len(apiErr.Errors) > 0:
		return strings.Join(apiErr.Messages(), ", ")
	case ok && apiErr.Message != "":
		return apiErr.Message
	case ok:
		return fallback
	case !ok && errors.Is(err, shared.ErrTimeout):
		return "the server took too long to respond"
	case !ok && errors.Is(err, shared.ErrServiceUnavailable):
		return "could not reach the server"
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// request is a prepared call to the API.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// response is a completed exchange with the API.
type response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// send performs r and returns the response without interpreting the status.
func (c *Client) send(ctx context.Context, r request) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return nil, transportError(r, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)
	return &response{Status: resp.StatusCode, Header: resp.Header, Body: body, RequestID: requestID}, nil
}

func transportError(r request, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s %s", shared.ErrTimeout, r.method, r.path)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, r.method, r.path, err)
}

// do performs r and returns the body of a 2xx response, or an [*APIError].
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}

	if resp.Status < 200 || resp.Status >= 300 {
		apiErr := parseAPIError(resp.Status, resp.Body, resp.RequestID)
		if apiErr.Status == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, apiErr
	}
	return resp.Body, nil
}

// doJSON sends in (if non-nil) as a JSON body.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	r := request{method: method, path: path, query: query}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r.body = bytes.NewReader(payload)
		r.contentType = "application/json"
	}
	return c.do(ctx, r)
}

// doMultipart sends fields and files (form field → local path) as multipart/form-data.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields [][2]string, files [][2]string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", f[0], err)
		}
	}

	for _, f := range files {
		if err := attachFile(w, f[0], f[1]); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	return c.do(ctx, request{method: method, path: path, body: &buf, contentType: w.FormDataContentType()})
}

func attachFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %v", shared.ErrInvalidInput, path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}
	return nil
}

func decodePage[T any](body []byte) (models.Page[T], error) {
	var page models.Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return page, fmt.Errorf("failed to decode response: %w", err)
	}
	return page, nil
}

func decodeResource[T any](body []byte) (*T, error) {
	v, err := models.UnmarshalResource[T](body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &v, nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {fmt.Sprint(page)}}
}
