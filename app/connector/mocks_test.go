package connector

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/lysyi3m/score-comb/app/feed"
	"github.com/lysyi3m/score-comb/app/football"
	"github.com/lysyi3m/score-comb/app/notify"
	"github.com/lysyi3m/score-comb/app/poller"
	"github.com/lysyi3m/score-comb/app/subscription"
)

// MockSource records the connector's calls and lets tests emit items.
type MockSource struct {
	mu      sync.Mutex
	active  map[string]bool
	items   map[poller.ListenerID]func(context.Context, feed.Item)
	errs    map[poller.ListenerID]func(context.Context, *poller.FeedError)
	nextID  poller.ListenerID
	calls   []string
	started bool
	stopped bool
}

func NewMockSource() *MockSource {
	return &MockSource{
		active: make(map[string]bool),
		items:  make(map[poller.ListenerID]func(context.Context, feed.Item)),
		errs:   make(map[poller.ListenerID]func(context.Context, *poller.FeedError)),
	}
}

func (m *MockSource) OnItem(fn func(ctx context.Context, item feed.Item)) poller.ListenerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.items[m.nextID] = fn
	return m.nextID
}

func (m *MockSource) OnError(fn func(ctx context.Context, err *poller.FeedError)) poller.ListenerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.errs[m.nextID] = fn
	return m.nextID
}

func (m *MockSource) RemoveListener(id poller.ListenerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, isItem := m.items[id]
	_, isErr := m.errs[id]
	delete(m.items, id)
	delete(m.errs, id)
	return isItem || isErr
}

func (m *MockSource) IsActive(feedURL string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[feedURL]
}

func (m *MockSource) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	m.calls = append(m.calls, "start")
}

func (m *MockSource) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.calls = append(m.calls, "stop")
}

func (m *MockSource) Emit(item feed.Item) {
	m.mu.Lock()
	fns := make([]func(context.Context, feed.Item), 0, len(m.items))
	for _, fn := range m.items {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(context.Background(), item)
	}
}

func (m *MockSource) ListenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items) + len(m.errs)
}

// MockStore keeps subscriptions in insertion order.
type MockStore struct {
	mu   sync.Mutex
	subs []subscription.Subscription
}

func (m *MockStore) Find(ctx context.Context, q subscription.Query) ([]subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []subscription.Subscription
	for _, s := range m.subs {
		if !slices.Contains(q.Teams, s.Team) {
			continue
		}
		if slices.ContainsFunc(q.Categories, func(c football.Category) bool { return s.Preferences.Wants(c) }) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockStore) Insert(ctx context.Context, s subscription.Subscription) (subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.subs {
		if existing.ID == s.ID {
			return subscription.Subscription{}, subscription.ErrDuplicate
		}
	}
	m.subs = append(m.subs, s)
	return s, nil
}

func (m *MockStore) Remove(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.subs)
	m.subs = slices.DeleteFunc(m.subs, func(s subscription.Subscription) bool { return s.ID == id })
	return int64(before - len(m.subs)), nil
}

func (m *MockStore) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs), nil
}

type MockPublisher struct {
	mu        sync.Mutex
	published []notify.Notification
}

func (m *MockPublisher) Publish(ctx context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, n)
	return nil
}

func (m *MockPublisher) Published() []notify.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Notification(nil), m.published...)
}

// MockBootstrap returns a fixed command and records whether polling had
// already started when it was called.
type MockBootstrap struct {
	cmd            subscription.Command
	err            error
	source         *MockSource
	startedOnFetch bool
}

func (m *MockBootstrap) FetchSubscriptions(ctx context.Context) (subscription.Command, error) {
	m.source.mu.Lock()
	m.startedOnFetch = m.source.started
	m.source.mu.Unlock()
	return m.cmd, m.err
}

var errBackendDown = errors.New("backend down")
