// Package notify delivers the batch report by email through the Resend REST
// API. Delivery is best-effort: the orchestrator logs and swallows failures.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Attachment is one file attached to an outbound message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer is the notifier contract the orchestrator depends on.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config for the Resend client.
type Config struct {
	BaseURL string // default https://api.resend.com
	APIKey  string
	From    string
	Timeout time.Duration
}

// Client sends email through Resend.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

type sendRequest struct {
	From        string           `json:"from"`
	To          []string         `json:"to"`
	Subject     string           `json:"subject"`
	HTML        string           `json:"html"`
	Attachments []sendAttachment `json:"attachments,omitempty"`
}

type sendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

// Send delivers one email with base64-encoded attachments.
func (c *Client) Send(ctx context.Context, msg Message) error {
	rid := uuid.New().String()
	start := time.Now()

	payload := sendRequest{
		From:    c.cfg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, sendAttachment{
			Filename: a.Filename,
			Content:  base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("notify.send_error", "req_id", rid, "error", err)
		return fmt.Errorf("send email: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("notify.response_body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(resp.Body)
		c.log.Error("notify.status_error", "req_id", rid, "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("send email: status %d", resp.StatusCode)
	}

	c.log.Info("notify.sent",
		"req_id", rid,
		"to", msg.To,
		"attachments", len(msg.Attachments),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
