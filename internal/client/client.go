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
)

// ContentItem is a catalog record as served by GET /api/v1/content.
type ContentItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	Thumbnail   string    `json:"thumbnail"`
	Source      string    `json:"source"`
	VideoURL    string    `json:"videoUrl"`
	FileSize    int64     `json:"fileSize,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateContentRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Category          string `json:"category"`
	Featured          bool   `json:"featured,omitempty"`
	Thumbnail         string `json:"thumbnail,omitempty"`
	ThumbnailFileName string `json:"thumbnailFileName,omitempty"`
	FileName          string `json:"fileName"`
	FileSize          int64  `json:"fileSize,omitempty"`
	Source            string `json:"source,omitempty"`
}

type UploadTarget struct {
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

type Analytics struct {
	TotalVideos int    `json:"totalVideos"`
	StorageUsed string `json:"storageUsed"`
}

// APIError carries the error envelope returned by the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL (e.g.
// http://localhost:6540). A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    httpClient,
	}
}

func (c *Client) ListContent(ctx context.Context) ([]ContentItem, error) {
	var items []ContentItem
	if err := c.do(ctx, http.MethodGet, "/content", nil, &items); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	if items == nil {
		items = []ContentItem{}
	}
	return items, nil
}

func (c *Client) GetContent(ctx context.Context, id string) (*ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodGet, "/content/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &item, nil
}

func (c *Client) CreateContent(ctx context.Context, req CreateContentRequest) (*ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodPost, "/content", req, &item); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return &item, nil
}

func (c *Client) DeleteContent(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/content/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

func (c *Client) RequestUploadTarget(ctx context.Context) (*UploadTarget, error) {
	var target UploadTarget
	if err := c.do(ctx, http.MethodPost, "/upload", nil, &target); err != nil {
		return nil, fmt.Errorf("request upload target: %w", err)
	}
	return &target, nil
}

func (c *Client) Analytics(ctx context.Context) (*Analytics, error) {
	var stats Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &stats); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	return &stats, nil
}

// FetchAsset downloads a static asset such as a thumbnail. rawURL is
// absolute and is not resolved against the API base.
func (c *Client) FetchAsset(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
