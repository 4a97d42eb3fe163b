// Package metrics exposes Prometheus metrics for the notifier on a private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/score-comb/app/poller"
)

const namespace = "score_comb"

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Metrics is safe to use through a nil pointer, every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	itemsReceived         prometheus.Counter
	feedErrors            *prometheus.CounterVec
	normalizationFailures prometheus.Counter
	itemsSuppressed       prometheus.Counter
	itemsUnclassified     prometheus.Counter
	notifications         *prometheus.CounterVec
	commands              *prometheus.CounterVec
	subscriptions         prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		itemsReceived: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_received_total",
			Help:      "Novel feed items handed to the pipeline.",
		}),
		feedErrors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Feed fetch and parse failures by feed.",
		}, []string{"feed"}),
		normalizationFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalization_failures_total",
			Help:      "Items whose description did not match the live-score pattern.",
		}),
		itemsSuppressed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_suppressed_total",
			Help:      "Stale final scores dropped on a feed's first poll.",
		}),
		itemsUnclassified: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_unclassified_total",
			Help:      "Events with a kind that maps to no notification category.",
		}),
		notifications: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications handed to the publish channel by status.",
		}, []string{"status"}),
		commands: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_commands_total",
			Help:      "Inbound subscription commands by message and status.",
		}, []string{"message", "status"}),
		subscriptions: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Stored subscriptions.",
		}),
	}
}

// StatsSource is implemented by *poller.Poller.
type StatsSource interface {
	Stats() poller.Stats
}

// WatchPoller exports the poller's own counters, read at scrape time.
func (m *Metrics) WatchPoller(src StatsSource) {
	if m == nil {
		return
	}

	auto := promauto.With(m.registry)
	auto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Completed poll cycles.",
	}, func() float64 { return float64(src.Stats().Cycles) })
	auto.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_skipped_total",
		Help:      "Ticks skipped because a cycle was still running.",
	}, func() float64 { return float64(src.Stats().SkippedCycles) })
	auto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cached_items",
		Help:      "Item identities tracked by the change-detection cache.",
	}, func() float64 { return float64(src.Stats().CachedItems) })
	auto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_feeds",
		Help:      "Feeds that completed their first poll.",
	}, func() float64 { return float64(src.Stats().ActiveFeeds) })
}

func (m *Metrics) ItemReceived() {
	if m == nil {
		return
	}
	m.itemsReceived.Inc()
}

func (m *Metrics) FeedError(feedURL string) {
	if m == nil {
		return
	}
	m.feedErrors.WithLabelValues(feedURL).Inc()
}

func (m *Metrics) NormalizationFailed() {
	if m == nil {
		return
	}
	m.normalizationFailures.Inc()
}

func (m *Metrics) ItemSuppressed() {
	if m == nil {
		return
	}
	m.itemsSuppressed.Inc()
}

func (m *Metrics) ItemUnclassified() {
	if m == nil {
		return
	}
	m.itemsUnclassified.Inc()
}

func (m *Metrics) NotificationSent() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(StatusSent).Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(StatusFailed).Inc()
}

func (m *Metrics) CommandHandled(message string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commands.WithLabelValues(message, status).Inc()
}

func (m *Metrics) SetSubscriptions(n int) {
	if m == nil {
		return
	}
	m.subscriptions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
