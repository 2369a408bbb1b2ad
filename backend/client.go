// Package backend talks to the fund-management-api REST backend on behalf of the caller.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fund-portal/monitor"

	"go.uber.org/zap"
)

// maxBodyBytes caps any single response body (attachments included).
const maxBodyBytes = 100 << 20

var ErrNotFound = errors.New("backend: not found")

// ErrResponseTooLarge is returned when a body exceeds the client's size cap.
var ErrResponseTooLarge = errors.New("backend: response too large")

// StatusError is returned for any non-2xx backend answer.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx; every request made with that
// context forwards it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

// TokenFrom returns the bearer token stored by WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client is a thin net/http client for the backend endpoints the gateway consumes.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	maxBody    int64
	logger     *zap.Logger
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", baseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    maxBodyBytes,
		logger:     logger.Named("backend"),
	}, nil
}

func (c *Client) resolve(p string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(p, "/")
	u.RawQuery = query.Encode()
	return &u
}

func (c *Client) get(ctx context.Context, endpoint string, target *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// Only hand the credential to the backend host itself.
	if token := TokenFrom(ctx); token != "" && target.Host == c.baseURL.Host {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json, application/pdf, */*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		monitor.ObserveBackendRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("request %s: %w", target.Path, err)
	}
	defer resp.Body.Close()
	monitor.ObserveBackendRequest(endpoint, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target.Path, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("read %s: %w (over %d bytes)", target.Path, ErrResponseTooLarge, c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		c.logger.Debug("backend request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: target.Path, Body: snippet}
	}
	return body, nil
}

// GetSubmissionDetails loads the shared submission details payload.
func (c *Client) GetSubmissionDetails(ctx context.Context, submissionID int) ([]byte, error) {
	return c.get(ctx, "submission_details",
		c.resolve(fmt.Sprintf("/api/v1/submissions/%d/details", submissionID), nil))
}

// GetSubmissionDocuments loads the document metadata of a submission.
func (c *Client) GetSubmissionDocuments(ctx context.Context, submissionID int) ([]byte, error) {
	return c.get(ctx, "submission_documents",
		c.resolve(fmt.Sprintf("/api/v1/submissions/%d/documents", submissionID), nil))
}

// ListQuery carries the filters of the submission list endpoints.
type ListQuery struct {
	Type   string
	Status string
	YearID string
	Page   int
	Limit  int
}

func (q ListQuery) values() url.Values {
	values := url.Values{}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.YearID != "" {
		values.Set("year_id", q.YearID)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// ListSubmissions loads the caller's submissions.
func (c *Client) ListSubmissions(ctx context.Context, q ListQuery) ([]byte, error) {
	return c.get(ctx, "submissions", c.resolve("/api/v1/submissions", q.values()))
}

// ListDeptHeadSubmissions loads the department-head review queue for one status.
func (c *Client) ListDeptHeadSubmissions(ctx context.Context, statusID int, q ListQuery) ([]byte, error) {
	values := q.values()
	values.Del("status")
	if statusID > 0 {
		values.Set("status_id", strconv.Itoa(statusID))
	}
	return c.get(ctx, "dept_head_submissions", c.resolve("/api/v1/dept-head/submissions", values))
}

// FetchByFileID downloads a managed file.
func (c *Client) FetchByFileID(ctx context.Context, fileID int) ([]byte, error) {
	if fileID <= 0 {
		return nil, fmt.Errorf("invalid file id %d", fileID)
	}
	return c.get(ctx, "file_download",
		c.resolve(fmt.Sprintf("/api/v1/files/managed/%d/download", fileID), nil))
}

// FetchByPath downloads a file by stored path or absolute URL.
func (c *Client) FetchByPath(ctx context.Context, storedPath string) ([]byte, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(storedPath, "\\", "/"))
	if trimmed == "" {
		return nil, errors.New("empty file path")
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		target, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid file url: %w", err)
		}
		return c.get(ctx, "file_path", target)
	}
	return c.get(ctx, "file_path", c.resolve(strings.TrimPrefix(trimmed, "./"), nil))
}
