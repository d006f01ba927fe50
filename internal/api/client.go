package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"shopfloor/internal/media"
	"shopfloor/internal/models"
	"shopfloor/internal/telemetry"
)

// TokenSource supplies the bearer credential for outgoing requests.
// The session store is the production implementation.
type TokenSource interface {
	Token() string
}

// Client performs the job operations against the shop backend. Every call is
// a single best-effort attempt; the server stays the source of truth and
// callers re-fetch after mutations instead of trusting local patches.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	tokens       TokenSource
	log          *logrus.Logger
}

// NewClient constructs the API client. uploadTimeout applies only to the
// photo-carrying completion request.
func NewClient(baseURL string, timeout, uploadTimeout time.Duration, tokens TokenSource, log *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if uploadTimeout <= 0 {
		uploadTimeout = 60 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
		tokens:       tokens,
		log:          log,
	}
}

type pagedListResponse struct {
	Data struct {
		Content []models.JobSummary `json:"content"`
	} `json:"data"`
	Info struct {
		Next string `json:"next"`
	} `json:"info"`
}

type myJobsResponse struct {
	Data []models.JobSummary `json:"data"`
}

type jobDetailResponse struct {
	Data models.JobDetail `json:"data"`
}

type errorBody struct {
	Msg string `json:"msg"`
}

// ListJobs fetches one page of the main job list.
func (c *Client) ListJobs(ctx context.Context, filter models.Filter, page, size int) (models.Page, error) {
	q := url.Values{}
	q.Set("status", filter.Status)
	q.Set("progress", string(filter.Progress))
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return c.fetchPage(ctx, c.baseURL+"/api/employee/job?"+q.Encode())
}

// ListJobsAt follows an absolute next-page cursor returned by a prior page.
func (c *Client) ListJobsAt(ctx context.Context, cursor string) (models.Page, error) {
	return c.fetchPage(ctx, cursor)
}

func (c *Client) fetchPage(ctx context.Context, fullURL string) (models.Page, error) {
	var out pagedListResponse
	if err := c.do(ctx, "list_jobs", http.MethodGet, fullURL, nil, "", &out); err != nil {
		return models.Page{}, err
	}
	return models.Page{Items: out.Data.Content, Next: out.Info.Next}, nil
}

// ListMyJobs fetches the non-paginated assigned-to-me list.
func (c *Client) ListMyJobs(ctx context.Context, filter models.Filter) ([]models.JobSummary, error) {
	q := url.Values{}
	q.Set("status", filter.Status)
	q.Set("progress", string(filter.Progress))
	var out myJobsResponse
	if err := c.do(ctx, "list_my_jobs", http.MethodGet, c.baseURL+"/api/employee/job/employee?"+q.Encode(), nil, "", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetJob fetches the full record for one job.
func (c *Client) GetJob(ctx context.Context, id string) (models.JobDetail, error) {
	var out jobDetailResponse
	if err := c.do(ctx, "get_job", http.MethodGet, c.baseURL+"/api/employee/job/"+url.PathEscape(id), nil, "", &out); err != nil {
		return models.JobDetail{}, err
	}
	return out.Data, nil
}

// AssignJob claims the job for the logged-in worker.
func (c *Client) AssignJob(ctx context.Context, id string) error {
	err := c.do(ctx, "assign_job", http.MethodPost, c.baseURL+"/api/employee/job/assign/"+url.PathEscape(id), nil, "", nil)
	if err != nil {
		return err
	}
	telemetry.JobsAssigned.Inc()
	return nil
}

// StartJob moves an assigned job into processing.
func (c *Client) StartJob(ctx context.Context, id string) error {
	err := c.do(ctx, "start_job", http.MethodPut, c.baseURL+"/api/employee/job/start/"+url.PathEscape(id), nil, "", nil)
	if err != nil {
		return err
	}
	telemetry.JobsStarted.Inc()
	return nil
}

// CompleteJob marks the job done. When photo is non-nil it is uploaded as a
// multipart body under the field name "image", on the longer-timeout client.
func (c *Client) CompleteJob(ctx context.Context, id string, photo *media.Photo) error {
	target := c.baseURL + "/api/employee/job/done/" + url.PathEscape(id)

	if photo == nil {
		if err := c.do(ctx, "complete_job", http.MethodPut, target, nil, "", nil); err != nil {
			return err
		}
		telemetry.JobsCompleted.Inc()
		return nil
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, photo.Name))
	header.Set("Content-Type", photo.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return fmt.Errorf("write photo part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart: %w", err)
	}

	if err := c.do(ctx, "complete_job", http.MethodPut, target, body, mw.FormDataContentType(), nil); err != nil {
		return err
	}
	telemetry.JobsCompleted.Inc()
	telemetry.PhotoUploadBytes.Add(float64(len(photo.Data)))
	return nil
}

// do executes one request, attaches the bearer token, and maps the response
// into the error taxonomy. result may be nil for mutating calls.
func (c *Client) do(ctx context.Context, op, method, fullURL string, body io.Reader, contentType string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	} else if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	client := c.httpClient
	if op == "complete_job" && contentType != "" {
		client = c.uploadClient
	}

	telemetry.APIRequests.WithLabelValues(op).Inc()
	c.log.WithFields(logrus.Fields{"op": op, "method": method, "url": fullURL}).Debug("api request")

	resp, err := client.Do(req)
	if err != nil {
		telemetry.APIFailures.WithLabelValues(op).Inc()
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.APIFailures.WithLabelValues(op).Inc()
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.APIFailures.WithLabelValues(op).Inc()
		return mapStatusError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			telemetry.APIFailures.WithLabelValues(op).Inc()
			return fmt.Errorf("%s: unmarshal response: %w", op, err)
		}
	}
	return nil
}

func mapStatusError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyAssigned
	}
	return &APIError{Status: status, Msg: eb.Msg}
}
