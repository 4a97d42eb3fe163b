package api

import (
	"context"
	"time"

	"github.com/lysyi3m/score-comb/app/connector"
	"github.com/lysyi3m/score-comb/app/notify"
	"github.com/lysyi3m/score-comb/app/poller"
	"github.com/lysyi3m/score-comb/app/subscription"
)

type PipelineInterface interface {
	HandleCommand(ctx context.Context, cmd subscription.Command) (subscription.Result, error)
	Subscription(ctx context.Context, id string) (subscription.Subscription, error)
	Unsubscribe(ctx context.Context, id string) (bool, error)
	SubscriptionCount(ctx context.Context) (int, error)
}

type PollerInterface interface {
	Poll(ctx context.Context) bool
	Stats() poller.Stats
	Feeds() []poller.Feed
	Interval() time.Duration
	IsActive(feedURL string) bool
}

type NotifierInterface interface {
	Stats() notify.Stats
}

var (
	_ PipelineInterface = (*connector.Connector)(nil)
	_ PollerInterface   = (*poller.Poller)(nil)
	_ NotifierInterface = (*notify.Dispatcher)(nil)
)

type Handler struct {
	pipeline PipelineInterface
	poller   PollerInterface
	notifier NotifierInterface
}

type FeedInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Interval string `json:"interval"`
	Timeout  string `json:"timeout,omitempty"`
	Active   bool   `json:"active"`
}

type SubscriptionResponse struct {
	ID     string `json:"id"`
	Team   string `json:"team"`
	Goals  bool   `json:"goals"`
	Events bool   `json:"events"`
	Result bool   `json:"result"`
}

type CommandResponse struct {
	subscription.Result
	Errors []string `json:"errors,omitempty"`
}
