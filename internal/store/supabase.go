package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a Supabase-Storage-compatible REST API.
type Client struct {
	baseURL string // storage API root, e.g. https://xyz.supabase.co/storage/v1
	apiKey  string
	bucket  string
	http    *http.Client
	log     *slog.Logger
}

// NewClient builds a storage client for one bucket.
func NewClient(baseURL, apiKey, bucket string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		bucket:  bucket,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     logger,
	}
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type listedObject struct {
	Name     string `json:"name"`
	Metadata struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List returns every object in the bucket (single page; the upload UI caps
// batches well below the page size).
func (c *Client) List(ctx context.Context) ([]Object, error) {
	body, _ := json.Marshal(listRequest{Prefix: "", Limit: 100, Offset: 0})
	endpoint := fmt.Sprintf("%s/object/list/%s", c.baseURL, c.bucket)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("list objects: status %d", resp.StatusCode)
	}

	var listed []listedObject
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return nil, fmt.Errorf("decode object list: %w", err)
	}

	objects := make([]Object, 0, len(listed))
	for _, o := range listed {
		objects = append(objects, Object{Name: o.Name, Size: o.Metadata.Size})
	}
	c.log.Info("store.list.ok", "bucket", c.bucket, "count", len(objects), "elapsed_ms", time.Since(start).Milliseconds())
	return objects, nil
}

// Download retrieves the raw bytes for one object.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("download %s: status %d", name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	c.log.Debug("store.download.ok", "name", name, "bytes", len(data))
	return data, nil
}

// Delete removes one object from the bucket.
func (c *Client) Delete(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("delete %s: status %d", name, resp.StatusCode)
	}
	return nil
}

func (c *Client) auth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.log.Warn("store.response_body_close_error", "error", err)
	}
}
