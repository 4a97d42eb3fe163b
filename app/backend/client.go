// Package backend talks to the notification backend: it publishes
// notifications and fetches the subscriptions registered for this connector.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/score-comb/app/notify"
	"github.com/lysyi3m/score-comb/app/subscription"
)

const (
	notificationsPath = "/api/notifications/"
	subscriptionsPath = "/api/connectors/football/subscriptions/"

	MessageNotify = "notify"
)

var _ notify.Publisher = (*Client)(nil)

type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

type notifyPayload struct {
	Message string     `json:"message"`
	Data    notifyData `json:"data"`
}

type notifyData struct {
	NotificationMessage string            `json:"notificationMessage"`
	Subscriptions       []subscriptionRef `json:"subscriptions"`
}

type subscriptionRef struct {
	ID string `json:"id"`
}

// Publish posts a notification for its recipients. Only 200 OK counts as
// delivered.
func (c *Client) Publish(ctx context.Context, n notify.Notification) error {
	payload := notifyPayload{
		Message: MessageNotify,
		Data: notifyData{
			NotificationMessage: n.Text,
			Subscriptions:       make([]subscriptionRef, 0, len(n.Recipients)),
		},
	}
	for _, id := range n.Recipients {
		payload.Data.Subscriptions = append(payload.Data.Subscriptions, subscriptionRef{ID: id})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+notificationsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d from backend (request %s)", resp.StatusCode, requestID)
	}

	slog.Debug("Notification delivered", "request_id", requestID, "recipients", len(n.Recipients))
	return nil
}

// FetchSubscriptions loads the subscriptions the backend holds for this
// connector, as a command to be applied locally.
func (c *Client) FetchSubscriptions(ctx context.Context) (subscription.Command, error) {
	var cmd subscription.Command

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+subscriptionsPath, nil)
	if err != nil {
		return cmd, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return cmd, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return cmd, fmt.Errorf("unexpected status code %d while fetching subscriptions", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&cmd); err != nil {
		return cmd, fmt.Errorf("failed to decode subscriptions: %w", err)
	}
	return cmd, nil
}
