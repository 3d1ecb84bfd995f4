// Package upload sends staged résumé files to the parsing endpoint in batches.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/utils"
)

const (
	DefaultEndpoint   = "http://127.0.0.1:5000"
	DefaultUploadPath = "/upload"
	// FieldName is the multipart form field the server reads the file from.
	FieldName = "resume"
	userAgent = "spigell/resume-screener"
	// Server messages are cut to this length in errors and logs.
	maxMessageLength = 300
)

// ErrUnexpectedShape is returned when a response is not the expected JSON envelope.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// StatusError is returned for non-success HTTP responses.
type StatusError struct {
	Filename   string
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("uploading %s: bad status: %s", e.Filename, e.Status)
	}
	return fmt.Sprintf("uploading %s: bad status: %s: %s", e.Filename, e.Status, e.Message)
}

type Client struct {
	logger     *zap.Logger
	http       *resty.Client
	Endpoint   string
	UploadPath string
	UserAgent  string
}

// New creates an upload client. A zero timeout leaves the transport default in place.
func New(logger *zap.Logger, endpoint string, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpClient := resty.New().SetLogger(logger.Sugar())
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}

	return &Client{
		logger:     logger,
		http:       httpClient,
		Endpoint:   endpoint,
		UploadPath: DefaultUploadPath,
		UserAgent:  userAgent,
	}
}

// Upload posts one file and returns the single parsed résumé from the
// `results` envelope.
func (c *Client) Upload(ctx context.Context, f *files.File) (*resume.Resume, error) {
	body, err := c.post(ctx, f)
	if err != nil {
		return nil, err
	}

	raw, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
	}

	return resume.FromRaw(f.Name, raw), nil
}

// UploadSingle is Upload for the single-file flow. Besides the `results` envelope it
// also accepts a bare résumé object, which is what the single-file server returns.
func (c *Client) UploadSingle(ctx context.Context, f *files.File) (*resume.Resume, error) {
	body, err := c.post(ctx, f)
	if err != nil {
		return nil, err
	}

	raw, err := parseEnvelope(body)
	if errors.Is(err, ErrUnexpectedShape) {
		raw, err = parseObject(body)
	}
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
	}

	return resume.FromRaw(f.Name, raw), nil
}

func (c *Client) post(ctx context.Context, f *files.File) ([]byte, error) {
	if f == nil {
		return nil, errors.New("file is required")
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
	}
	defer file.Close()

	url := c.uploadURL()
	c.logger.Debug("make request", zap.String("url", url), zap.String("filename", f.Name))

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.UserAgent).
		SetHeader("Accept", "application/json").
		SetFileReader(FieldName, f.Name, file).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
	}

	body := resp.Body()

	c.logger.Debug("got response",
		zap.String("filename", f.Name),
		zap.Int("status", resp.StatusCode()),
		zap.Int("body_length", len(body)),
	)

	if !resp.IsSuccess() {
		return nil, &StatusError{
			Filename:   f.Name,
			StatusCode: resp.StatusCode(),
			Status:     statusText(resp),
			Message:    errorMessage(body, true),
		}
	}

	// The server may report a failure with a success status.
	if msg := errorMessage(body, false); msg != "" {
		return nil, fmt.Errorf("uploading %s: server error: %s", f.Name, msg)
	}

	return body, nil
}

func (c *Client) uploadURL() string {
	path := c.UploadPath
	if path == "" {
		path = DefaultUploadPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.Endpoint, "/") + path
}

// parseEnvelope extracts the only entry of a `{"results": [...]}` body.
func parseEnvelope(body []byte) (map[string]any, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrUnexpectedShape)
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("%w: missing results array", ErrUnexpectedShape)
	}

	entries := results.Array()
	if len(entries) != 1 {
		return nil, fmt.Errorf("%w: expected 1 result, got %d", ErrUnexpectedShape, len(entries))
	}

	raw, ok := entries[0].Value().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: result is not an object", ErrUnexpectedShape)
	}

	return raw, nil
}

func parseObject(body []byte) (map[string]any, error) {
	parsed := gjson.ParseBytes(body)
	raw, ok := parsed.Value().(map[string]any)
	if !ok || !parsed.IsObject() {
		return nil, fmt.Errorf("%w: body is not an object", ErrUnexpectedShape)
	}
	return raw, nil
}

// errorMessage returns the `error` string of a JSON body. With raw set, a non-JSON
// body is returned as is.
func errorMessage(body []byte, raw bool) string {
	if !gjson.ValidBytes(body) {
		if !raw {
			return ""
		}
		return utils.TruncateForLog(string(body), maxMessageLength)
	}
	msg := gjson.GetBytes(body, "error")
	if msg.Type != gjson.String {
		return ""
	}
	return utils.TruncateForLog(msg.String(), maxMessageLength)
}

func statusText(resp *resty.Response) string {
	if status := strings.TrimSpace(resp.Status()); status != "" {
		return status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
}
