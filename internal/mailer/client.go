// File path: internal/mailer/client.go
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgewise/intake/internal/common"
)

// Attachment is a binary file attached to an outbound email. Content is
// base64-encoded on the wire.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Email is one outbound message handed to the provider.
type Email struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Client talks to the transactional email provider. The provider's dispatch
// protocol is asynchronous: a send request is accepted with a message id, and
// the message is polled until it reaches a terminal status.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

func NewFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

func New(cfg Config) *Client {
	cfg.applyDefaults()
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		cfg:        cfg,
	}
}

// Ready reports whether the client carries a complete provider configuration.
// It never contacts the network.
func (c *Client) Ready() error {
	if c == nil {
		return common.MissingConfig("MAILER_ENDPOINT")
	}
	return c.cfg.Validate()
}

// From returns the configured sender address.
func (c *Client) From() string {
	if c == nil {
		return ""
	}
	return c.cfg.From
}

// AdminEmail returns the configured admin recipient.
func (c *Client) AdminEmail() string {
	if c == nil {
		return ""
	}
	return c.cfg.AdminEmail
}

type wireAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type sendRequest struct {
	From        string           `json:"from"`
	To          []string         `json:"to"`
	Subject     string           `json:"subject"`
	HTML        string           `json:"html"`
	Attachments []wireAttachment `json:"attachments,omitempty"`
}

type messageStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Send submits the email and polls until the provider reports a terminal
// status, bounded by the configured dispatch timeout. It returns the
// provider-assigned message id.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	if len(email.To) == 0 {
		return "", fmt.Errorf("mailer: no recipients")
	}
	logger := common.Logger()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.DispatchTimeout)
	defer cancel()

	id, err := c.submit(ctx, email)
	if err != nil {
		return "", err
	}
	logger.Debug("mailer: message accepted", "message_id", id, "recipients", len(email.To))

	if err := c.awaitDelivery(ctx, id); err != nil {
		return "", err
	}
	logger.Info("mailer: message delivered", "message_id", id, "recipients", len(email.To))
	return id, nil
}

func (c *Client) submit(ctx context.Context, email Email) (string, error) {
	payload := sendRequest{
		From:    c.cfg.From,
		To:      email.To,
		Subject: email.Subject,
		HTML:    email.HTML,
	}
	for _, att := range email.Attachments {
		payload.Attachments = append(payload.Attachments, wireAttachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Content:     base64.StdEncoding.EncodeToString(att.Content),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("mailer: encode send request: %w", err)
	}
	status, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body), uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("mailer: send request failed: %w", err)
	}
	if status.ID == "" {
		return "", fmt.Errorf("mailer: provider returned no message id")
	}
	return status.ID, nil
}

func (c *Client) awaitDelivery(ctx context.Context, id string) error {
	interval := c.cfg.PollInterval
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("mailer: dispatch timed out waiting for %s: %w", id, ctx.Err())
		case <-time.After(interval):
		}
		status, err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/messages/"+id, nil, "")
		if err != nil {
			// Transient poll failures back off and try again until the
			// dispatch deadline expires; the message is already queued.
			common.Logger().Warn("mailer: status poll failed", "message_id", id, "error", err)
			interval = minDuration(interval*2, 10*time.Second)
			continue
		}
		interval = c.cfg.PollInterval
		switch strings.ToLower(status.Status) {
		case "delivered", "sent":
			return nil
		case "failed", "bounced", "rejected":
			if status.Error != "" {
				return fmt.Errorf("mailer: dispatch failed for %s: %s", id, status.Error)
			}
			return fmt.Errorf("mailer: dispatch failed for %s: status %s", id, status.Status)
		default:
			// queued / processing / sending: keep polling.
		}
	}
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, idempotencyKey string) (messageStatus, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return messageStatus{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return messageStatus{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return messageStatus{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return messageStatus{}, fmt.Errorf("provider returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var status messageStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return messageStatus{}, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
