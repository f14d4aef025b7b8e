// Package webhook forwards engine events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
)

type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

func New(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
		log:        logger.Default().WithPrefix("webhook"),
	}
}

// Payload is the body POSTed for every batch of events.
type Payload struct {
	ProfileID int64          `json:"profile_id"`
	Events    []models.Event `json:"events"`
	SentAt    time.Time      `json:"sent_at"`
}

// Notify POSTs events as one Payload. Empty batches are not sent.
func (c *Client) Notify(ctx context.Context, profileID int64, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("webhook").WithField("profile_id", profileID)

	body, err := json.Marshal(Payload{ProfileID: profileID, Events: events, SentAt: time.Now().UTC()})
	if err != nil {
		log.Error("failed to encode payload: %v", err)
		return err
	}

	log.Debug("posting %d events to %s", len(events), c.url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("failed to post events: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("webhook responded in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("webhook rejected events: status=%d, body=%s", resp.StatusCode, string(snippet))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
