// Package ocr wraps the LLMWhisperer text-extraction service: submit raw
// document bytes, receive a job handle, poll for the extracted text later.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

// Config for the OCR client.
type Config struct {
	SubmitURL    string
	RetrieveURL  string
	APIKey       string
	Timeout      time.Duration // per-request HTTP timeout
	PollInterval time.Duration // between retrieval attempts
	MaxAttempts  int           // retrieval attempts before giving up
}

// Client submits documents and retrieves extracted text.
type Client struct {
	cfg   Config
	http  *http.Client
	log   *slog.Logger
	sleep func(context.Context, time.Duration) error
}

// NewClient builds an OCR client with defaults matching the hosted service.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   logger,
		sleep: sleepCtx,
	}
}

// Submit sends raw document bytes for extraction and returns the job handle.
func (c *Client) Submit(ctx context.Context, filename string, data []byte) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	u, err := url.Parse(c.cfg.SubmitURL)
	if err != nil {
		return "", &SubmissionError{Filename: filename, Reason: err.Error()}
	}
	q := u.Query()
	// high_quality mode for both PDFs and photographs.
	q.Set("mode", "high_quality")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return "", &SubmissionError{Filename: filename, Reason: err.Error()}
	}
	req.Header.Set("unstract-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("ocr.submit.send_error", "req_id", rid, "filename", filename, "error", err)
		return "", &SubmissionError{Filename: filename, Reason: err.Error()}
	}
	defer c.closeBody(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		c.log.Error("ocr.submit.status_error",
			"req_id", rid, "filename", filename, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &SubmissionError{Filename: filename, Status: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	var result struct {
		WhisperHash string `json:"whisper_hash"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &SubmissionError{Filename: filename, Reason: fmt.Sprintf("decode response: %v", err)}
	}
	if result.WhisperHash == "" {
		return "", &SubmissionError{Filename: filename, Reason: "response missing whisper_hash"}
	}

	c.log.Info("ocr.submit.ok",
		"req_id", rid,
		"filename", filename,
		"handle", result.WhisperHash,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result.WhisperHash, nil
}

// Retrieve polls for the extracted text of a submitted job. An empty body
// means the job is still processing and counts as one attempt; a non-2xx
// response is terminal.
func (c *Client) Retrieve(ctx context.Context, handle string) (string, error) {
	rid := uuid.New().String()

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		u, err := url.Parse(c.cfg.RetrieveURL)
		if err != nil {
			return "", &RetrievalError{Handle: handle, Body: err.Error()}
		}
		q := u.Query()
		q.Set("whisper_hash", handle)
		q.Set("text_only", "true")
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return "", &RetrievalError{Handle: handle, Body: err.Error()}
		}
		req.Header.Set("unstract-key", c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return "", &RetrievalError{Handle: handle, Body: err.Error()}
		}
		raw, _ := io.ReadAll(resp.Body)
		c.closeBody(resp.Body)

		if resp.StatusCode/100 != 2 {
			c.log.Error("ocr.retrieve.status_error",
				"req_id", rid, "handle", handle, "status", resp.StatusCode, "attempt", attempt)
			return "", &RetrievalError{Handle: handle, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		}

		text := strings.TrimSpace(string(raw))
		if text != "" {
			c.log.Info("ocr.retrieve.ok", "req_id", rid, "handle", handle, "attempt", attempt, "text_len", len(text))
			return text, nil
		}

		c.log.Info("ocr.retrieve.pending",
			"req_id", rid, "handle", handle, "attempt", attempt, "max_attempts", c.cfg.MaxAttempts)
		if attempt < c.cfg.MaxAttempts {
			if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
				return "", common.WrapError(err, "retrieval wait")
			}
		}
	}

	waited := time.Duration(c.cfg.MaxAttempts) * c.cfg.PollInterval
	return "", &RetrievalTimeout{Handle: handle, Attempts: c.cfg.MaxAttempts, Waited: waited.String()}
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.log.Warn("ocr.response_body_close_error", "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
