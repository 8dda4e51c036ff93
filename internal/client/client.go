// Package client is the HTTP client for the CV analysis backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"qahiring/cv-analyzer/internal/models"
)

// Client calls the backend API. Every call is bound to the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A zero timeout means no client-side limit.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response. Message holds the server's error string
// when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// ErrorMessage returns the server-provided message carried by err, or
// fallback when there is none.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// GetCriteria fetches the stored evaluation criteria.
func (c *Client) GetCriteria(ctx context.Context) (string, error) {
	var payload models.CriteriaPayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/criteria", nil, &payload); err != nil {
		return "", fmt.Errorf("failed to fetch criteria: %w", err)
	}
	return payload.Criteria, nil
}

// SaveCriteria replaces the stored criteria with text. Empty text is sent as is.
func (c *Client) SaveCriteria(ctx context.Context, text string) error {
	body, err := json.Marshal(models.CriteriaPayload{Criteria: text})
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/criteria", bytes.NewReader(body), nil); err != nil {
		return fmt.Errorf("failed to save criteria: %w", err)
	}
	return nil
}

// UploadRequest is a CV file plus an optional criteria override.
type UploadRequest struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Criteria    string
}

// Upload submits a CV for analysis and returns the result identifier.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(req.Filename)))
	header.Set("Content-Type", req.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if criteria := strings.TrimSpace(req.Criteria); criteria != "" {
		if err := mw.WriteField("criteria", criteria); err != nil {
			return "", fmt.Errorf("failed to write criteria field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	var resp models.UploadResponse
	if err := c.do(httpReq, &resp); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("failed to upload file: response has no id")
	}
	return resp.ID, nil
}

// GetResult fetches a computed analysis by identifier.
func (c *Client) GetResult(ctx context.Context, id string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.doJSON(ctx, http.MethodGet, "/api/results/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch result: %w", err)
	}
	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody models.ErrorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); readErr == nil {
			if json.Unmarshal(data, &errBody) == nil {
				apiErr.Message = errBody.Error
			}
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
