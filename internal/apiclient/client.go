package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// DefaultReportFilename is used when the server does not name the report.
const DefaultReportFilename = "weekly-report.pdf"

// TokenSource returns the bearer token to attach to requests, if any.
type TokenSource func(ctx context.Context) (string, bool)

// Client talks to the remote hospital API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	maxReport  int64
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource attaches a bearer token to every request when one is stored.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the API at cfg.BaseURL.
func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		maxReport:  cfg.MaxReportSize(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login submits credentials. A non-2xx status is not an error here: the
// decoded body and status are returned for the caller to judge.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	status, _, err := c.doJSON(ctx, http.MethodPost, "/login", req, &out)
	if err != nil {
		return nil, err
	}
	out.StatusCode = status
	return &out, nil
}

// Register submits a new account. Like Login, the status is returned as data.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	status, _, err := c.doJSON(ctx, http.MethodPost, "/register", req, &out)
	if err != nil {
		return nil, err
	}
	out.StatusCode = status
	return &out, nil
}

// Tasks lists the assignments of a cleaner.
func (c *Client) Tasks(ctx context.Context, cleanerID string) ([]domain.Task, error) {
	var out dto.TasksResponse
	if _, _, err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(cleanerID), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.NewApplicationError("Failed to load tasks.", 0)
	}
	return out.Data, nil
}

// PendingRecords lists cleaning records awaiting manager approval.
func (c *Client) PendingRecords(ctx context.Context) ([]domain.CleaningRecord, error) {
	var out dto.DashboardResponse
	if _, _, err := c.doJSON(ctx, http.MethodGet, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.NewApplicationError("Failed to fetch approvals.", 0)
	}
	return out.Data, nil
}

// Approve records a manager decision on a cleaning record.
func (c *Client) Approve(ctx context.Context, recordID int64, status domain.ApprovalStatus) error {
	var out dto.ResultResponse
	req := dto.ApproveRequest{RecordID: recordID, NewStatus: status}
	code, _, err := c.doJSON(ctx, http.MethodPost, "/approve", req, &out)
	if err != nil {
		return err
	}
	if !out.Success {
		return apperrors.NewApplicationError("Failed to update status.", code)
	}
	return nil
}

// AssignTask creates a cleaning assignment.
func (c *Client) AssignTask(ctx context.Context, assignment domain.TaskAssignment) error {
	var out dto.ResultResponse
	code, _, err := c.doJSON(ctx, http.MethodPost, "/assign_task", assignment, &out)
	if err != nil {
		return err
	}
	if !isSuccess(code) || !out.Success {
		return apperrors.NewApplicationError(fallback(out.Reason(), "Failed to assign task."), code)
	}
	return nil
}

// VerifyRoom uploads an after-cleaning photo for verification.
func (c *Client) VerifyRoom(ctx context.Context, roomID, cleanerID, filename string, photo io.Reader) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("room_id", roomID); err != nil {
		return err
	}
	part, err := form.CreateFormFile("after_photo", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, photo); err != nil {
		return fmt.Errorf("read photo: %w", err)
	}
	if err := form.WriteField("cleaner_id", cleanerID); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	var out dto.ResultResponse
	code, _, err := c.do(ctx, http.MethodPost, "/verify_room", &body, form.FormDataContentType(), &out)
	if err != nil {
		return err
	}
	if !isSuccess(code) || !out.Success {
		return apperrors.NewApplicationError(fallback(out.Reason(), "Submission failed."), code)
	}
	return nil
}

// WeeklyReport downloads the weekly approved-work report.
func (c *Client) WeeklyReport(ctx context.Context) (*domain.Report, error) {
	resp, err := c.send(ctx, http.MethodGet, "/report/weekly", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, apperrors.NewApplicationError("Could not download report.", resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, c.maxReport+1))
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	if int64(len(content)) > c.maxReport {
		return nil, apperrors.NewApplicationError("Report is too large to download.", resp.StatusCode)
	}
	return &domain.Report{
		Filename:    reportFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (int, http.Header, error) {
	if in == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(payload), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) (int, http.Header, error) {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, resp.Header, apperrors.NewNetworkError(
			fmt.Errorf("decode %s %s response (status %d): %w", method, path, resp.StatusCode, err))
	}
	return resp.StatusCode, resp.Header, nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token, ok := c.tokens(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.metrics.RecordError(path, method, apperrors.CodeNetwork)
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, apperrors.NewNetworkError(err)
	}

	c.metrics.RecordRequest(metricPath(path), method, resp.StatusCode, duration)
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))
	return resp, nil
}

func reportFilename(disposition string) string {
	if disposition == "" {
		return DefaultReportFilename
	}
	kind, params, err := mime.ParseMediaType(disposition)
	if err != nil || kind != "attachment" {
		return DefaultReportFilename
	}
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == ".." || name == "/" {
		return DefaultReportFilename
	}
	return name
}

// metricPath keeps per-user path segments out of metric labels.
func metricPath(path string) string {
	if strings.HasPrefix(path, "/tasks/") {
		return "/tasks/:cleaner_id"
	}
	return path
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func fallback(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// ParseRecordID parses a record identifier typed by a user.
func ParseRecordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid record id %q", raw), nil)
	}
	return id, nil
}
