// Package connector wires the poller to the football pipeline: every novel
// feed item is normalized, classified, matched against subscriptions and
// dispatched.
package connector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/score-comb/app/feed"
	"github.com/lysyi3m/score-comb/app/football"
	"github.com/lysyi3m/score-comb/app/metrics"
	"github.com/lysyi3m/score-comb/app/notify"
	"github.com/lysyi3m/score-comb/app/poller"
	"github.com/lysyi3m/score-comb/app/subscription"
)

// Source is the subset of *poller.Poller the connector drives.
type Source interface {
	OnItem(fn func(ctx context.Context, item feed.Item)) poller.ListenerID
	OnError(fn func(ctx context.Context, err *poller.FeedError)) poller.ListenerID
	RemoveListener(id poller.ListenerID) bool
	IsActive(feedURL string) bool
	Start()
	Stop()
}

// Bootstrapper supplies the subscriptions known before the service started.
type Bootstrapper interface {
	FetchSubscriptions(ctx context.Context) (subscription.Command, error)
}

var _ Source = (*poller.Poller)(nil)

type Connector struct {
	source     Source
	store      subscription.Store
	matcher    *subscription.Matcher
	commands   *subscription.CommandHandler
	dispatcher *notify.Dispatcher
	bootstrap  Bootstrapper
	metrics    *metrics.Metrics
	now        func() time.Time

	mu        sync.Mutex
	listeners []poller.ListenerID
}

type Option func(*Connector)

// WithBootstrap loads subscriptions from b before polling starts.
func WithBootstrap(b Bootstrapper) Option {
	return func(c *Connector) {
		c.bootstrap = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Connector) {
		c.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

func New(source Source, store subscription.Store, dispatcher *notify.Dispatcher, opts ...Option) *Connector {
	c := &Connector{
		source:     source,
		store:      store,
		matcher:    subscription.NewMatcher(store),
		commands:   subscription.NewCommandHandler(store),
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to the source, loads the bootstrap subscriptions and then
// starts polling. A failed bootstrap is logged and polling starts anyway.
func (c *Connector) Start(ctx context.Context) {
	c.mu.Lock()
	c.listeners = append(c.listeners,
		c.source.OnItem(c.HandleItem),
		c.source.OnError(c.handleFeedError),
	)
	c.mu.Unlock()

	if c.bootstrap != nil {
		c.loadSubscriptions(ctx)
	}
	c.refreshSubscriptionCount(ctx)

	slog.Info("Start polling feeds")
	c.source.Start()
}

// Stop halts polling and detaches from the source.
func (c *Connector) Stop() {
	c.source.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.listeners {
		c.source.RemoveListener(id)
	}
	c.listeners = nil
}

func (c *Connector) loadSubscriptions(ctx context.Context) {
	cmd, err := c.bootstrap.FetchSubscriptions(ctx)
	if err != nil {
		slog.Error("Failed to load subscriptions from backend", "error", err)
		return
	}

	result, err := c.HandleCommand(ctx, cmd)
	if err != nil {
		slog.Warn("Some subscriptions were rejected", "rejected", result.Rejected, "error", err)
	}
	slog.Info("Subscriptions loaded", "added", result.Added)
}

// HandleCommand applies an inbound subscription command.
func (c *Connector) HandleCommand(ctx context.Context, cmd subscription.Command) (subscription.Result, error) {
	result, err := c.commands.Handle(ctx, cmd)
	c.metrics.CommandHandled(cmd.Message, err)
	c.refreshSubscriptionCount(ctx)
	return result, err
}

// Subscription returns a stored subscription by ID.
func (c *Connector) Subscription(ctx context.Context, id string) (subscription.Subscription, error) {
	return c.store.Get(ctx, id)
}

// Unsubscribe removes a single subscription and reports whether it existed.
func (c *Connector) Unsubscribe(ctx context.Context, id string) (bool, error) {
	n, err := c.commands.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	c.refreshSubscriptionCount(ctx)
	return n > 0, nil
}

func (c *Connector) SubscriptionCount(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

func (c *Connector) refreshSubscriptionCount(ctx context.Context) {
	n, err := c.store.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count subscriptions", "error", err)
		return
	}
	c.metrics.SetSubscriptions(n)
}

// HandleItem runs a novel feed item through the notification pipeline.
func (c *Connector) HandleItem(ctx context.Context, item feed.Item) {
	c.metrics.ItemReceived()

	if item.FeedURL == "" {
		slog.Error("Item without origin feed skipped", "guid", item.GUID)
		return
	}

	ev, ok := football.Normalize(item.Description)
	if !ok {
		c.metrics.NormalizationFailed()
		slog.Debug("Item is not a match event", "feed", item.FeedURL, "description", item.Description)
		return
	}

	if subscription.Suppressed(c.source.IsActive(item.FeedURL), ev, item.PublishedAt, c.now()) {
		c.metrics.ItemSuppressed()
		slog.Debug("Stale result suppressed", "feed", item.FeedURL, "home", ev.Home, "guest", ev.Guest)
		return
	}

	cls, ok := football.Classify(ev.Kind)
	if !ok {
		c.metrics.ItemUnclassified()
		slog.Debug("Event kind not notified", "kind", ev.Kind)
		return
	}

	recipients, err := c.matcher.Match(ctx, ev.Home, ev.Guest, cls.Categories)
	if err != nil {
		slog.Error("Failed to match subscriptions", "home", ev.Home, "guest", ev.Guest, "error", err)
		return
	}

	c.dispatcher.Dispatch(ctx, cls.Text, ev.Home, ev.Guest, ev.Score, recipients)
}

func (c *Connector) handleFeedError(ctx context.Context, err *poller.FeedError) {
	c.metrics.FeedError(err.FeedURL)
	slog.Error("Feed poll failed", "feed", err.FeedURL, "error", err.Err)
}
