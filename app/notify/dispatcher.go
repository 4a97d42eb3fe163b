// Package notify composes notification messages and hands them to a publish channel.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/lysyi3m/score-comb/app/metrics"
)

type Notification struct {
	Text       string
	Recipients []string
}

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

type Stats struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
}

type Dispatcher struct {
	publisher Publisher
	metrics   *metrics.Metrics

	sent   atomic.Int64
	failed atomic.Int64
}

// NewDispatcher accepts a nil metrics collector.
func NewDispatcher(publisher Publisher, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{publisher: publisher, metrics: m}
}

// Message formats the notification text for a match event.
func Message(text, home, guest, score string) string {
	return fmt.Sprintf("%s - %s %s %s", text, home, score, guest)
}

// Dispatch publishes one notification for all recipients. Publish failures
// are logged and counted, never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, text, home, guest, score string, recipients []string) {
	if len(recipients) == 0 {
		return
	}

	n := Notification{
		Text:       Message(text, home, guest, score),
		Recipients: recipients,
	}

	if err := d.publisher.Publish(ctx, n); err != nil {
		d.failed.Add(1)
		d.metrics.NotificationFailed()
		slog.Error("Failed to publish notification", "message", n.Text, "recipients", len(recipients), "error", err)
		return
	}

	d.sent.Add(1)
	d.metrics.NotificationSent()
	slog.Info("Notification published", "message", n.Text, "recipients", len(recipients))
}

func (d *Dispatcher) Stats() Stats {
	return Stats{Sent: d.sent.Load(), Failed: d.failed.Load()}
}
