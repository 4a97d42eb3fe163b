package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/score-comb/app/feed"
)

const DefaultInterval = time.Hour

// Feed is a polled source. A zero Interval polls the feed on every cycle.
type Feed struct {
	Name     string
	URL      string
	Interval time.Duration
	Timeout  time.Duration
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Response, error)
}

type EntryParser interface {
	Parse(r io.Reader) ([]feed.Item, error)
}

var (
	_ Fetcher     = (*feed.HTTPFetcher)(nil)
	_ EntryParser = (*feed.Parser)(nil)
)

// FeedError is delivered to error listeners for a failed fetch or parse.
type FeedError struct {
	FeedURL string
	Err     error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s: %v", e.FeedURL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

type Stats struct {
	Cycles            int64
	SkippedCycles     int64
	ItemsEmitted      int64
	Errors            int64
	CachedItems       int
	ActiveFeeds       int
	Running           bool
	LastCycleAt       *time.Time
	LastCycleDuration time.Duration
}

type Option func(*Poller)

func WithInterval(interval time.Duration) Option {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// Poller fetches its feeds one after another on a fixed schedule and emits
// item, error and end signals. At most one cycle runs at a time.
type Poller struct {
	feeds    []Feed
	fetcher  Fetcher
	parser   EntryParser
	interval time.Duration
	now      func() time.Time
	cache    *Cache

	items  signal[feed.Item]
	errs   signal[*FeedError]
	ends   signal[string]
	nextID atomic.Uint64

	running       atomic.Bool
	cycleMu       sync.Mutex
	cycles        atomic.Int64
	skippedCycles atomic.Int64
	itemsEmitted  atomic.Int64
	errorCount    atomic.Int64

	mu                sync.Mutex
	active            map[string]bool
	lastPolled        map[string]time.Time
	lastCycleAt       *time.Time
	lastCycleDuration time.Duration
	cancel            context.CancelFunc
	wg                sync.WaitGroup
}

func New(feeds []Feed, fetcher Fetcher, parser EntryParser, opts ...Option) *Poller {
	p := &Poller{
		feeds:      append([]Feed(nil), feeds...),
		fetcher:    fetcher,
		parser:     parser,
		interval:   DefaultInterval,
		now:        time.Now,
		cache:      NewCache(),
		active:     make(map[string]bool, len(feeds)),
		lastPolled: make(map[string]time.Time, len(feeds)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// OnItem registers a handler for every novel item.
func (p *Poller) OnItem(fn func(ctx context.Context, item feed.Item)) ListenerID {
	id := p.newListenerID()
	p.items.add(id, fn)
	return id
}

// OnError registers a handler for fetch, status and parse failures.
func (p *Poller) OnError(fn func(ctx context.Context, err *FeedError)) ListenerID {
	id := p.newListenerID()
	p.errs.add(id, fn)
	return id
}

// OnEnd registers a handler called with the feed URL once a feed was read.
func (p *Poller) OnEnd(fn func(ctx context.Context, feedURL string)) ListenerID {
	id := p.newListenerID()
	p.ends.add(id, fn)
	return id
}

// RemoveListener unregisters a handler. Once it returns the handler is not
// invoked again, including by an emission already in progress.
func (p *Poller) RemoveListener(id ListenerID) bool {
	return p.items.remove(id) || p.errs.remove(id) || p.ends.remove(id)
}

func (p *Poller) newListenerID() ListenerID {
	return ListenerID(p.nextID.Add(1))
}

// Start runs a cycle immediately and then once per interval.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	slog.Info("Starting poller", "feeds", len(p.feeds), "interval", p.interval)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.trigger()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.trigger()
			}
		}
	}()
}

// Stop halts the schedule and waits for a running cycle to finish, including
// one started through Poll. The running cycle is not cancelled.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		p.wg.Wait()
	}

	p.cycleMu.Lock()
	p.cycleMu.Unlock()

	if cancel != nil {
		slog.Info("Poller stopped")
	}
}

// Poll runs one cycle on the calling goroutine. It returns false without
// polling when another cycle is in flight.
func (p *Poller) Poll(ctx context.Context) bool {
	if !p.running.CompareAndSwap(false, true) {
		p.skippedCycles.Add(1)
		return false
	}
	defer p.running.Store(false)

	p.runCycle(ctx)
	return true
}

func (p *Poller) trigger() {
	if !p.running.CompareAndSwap(false, true) {
		p.skippedCycles.Add(1)
		slog.Warn("Previous poll cycle still running, skipping")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.running.Store(false)
		p.runCycle(context.Background())
	}()
}

func (p *Poller) runCycle(ctx context.Context) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	start := p.now()

	polled := 0
	for _, f := range p.feeds {
		if !p.isDue(f, start) {
			continue
		}
		p.pollFeed(ctx, f, start)
		polled++
	}

	duration := p.now().Sub(start)
	p.cycles.Add(1)

	p.mu.Lock()
	p.lastCycleAt = &start
	p.lastCycleDuration = duration
	p.mu.Unlock()

	slog.Debug("Poll cycle completed", "feeds", polled, "duration", duration)
}

func (p *Poller) isDue(f Feed, now time.Time) bool {
	if f.Interval <= 0 {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	last, ok := p.lastPolled[f.URL]
	return !ok || now.Sub(last) >= f.Interval
}

// pollFeed records the cycle start as the feed's poll time, so a feed whose
// interval equals the tick spacing is due again on the next cycle.
func (p *Poller) pollFeed(ctx context.Context, f Feed, cycleStart time.Time) {
	p.mu.Lock()
	p.lastPolled[f.URL] = cycleStart
	p.mu.Unlock()

	fetchCtx := ctx
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	resp, err := p.fetcher.Fetch(fetchCtx, f.URL)
	if err != nil {
		p.emitError(ctx, f.URL, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.emitError(ctx, f.URL, &feed.StatusError{URL: f.URL, StatusCode: resp.StatusCode})
		p.emitEnd(ctx, f.URL)
		return
	}

	items, err := p.parser.Parse(resp.Body)
	if err != nil {
		p.emitError(ctx, f.URL, err)
		p.emitEnd(ctx, f.URL)
		return
	}

	novel := 0
	for _, item := range items {
		item.FeedURL = f.URL
		if !p.cache.ShouldEmit(f.URL, item.GUID, item.PublishedAt) {
			continue
		}
		novel++
		p.itemsEmitted.Add(1)
		p.items.emit(ctx, item)
	}

	slog.Debug("Feed polled", "feed", f.URL, "total", len(items), "new", novel)

	p.emitEnd(ctx, f.URL)
}

func (p *Poller) emitError(ctx context.Context, feedURL string, err error) {
	p.errorCount.Add(1)
	p.errs.emit(ctx, &FeedError{FeedURL: feedURL, Err: err})
}

func (p *Poller) emitEnd(ctx context.Context, feedURL string) {
	p.ends.emit(ctx, feedURL)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active[feedURL] {
		p.active[feedURL] = true
		slog.Debug("Feed activated", "feed", feedURL)
	}
}

// IsActive reports whether the feed finished its first poll. Items read
// before that are historical backlog.
func (p *Poller) IsActive(feedURL string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active[feedURL]
}

func (p *Poller) Feeds() []Feed {
	return append([]Feed(nil), p.feeds...)
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{
		Cycles:            p.cycles.Load(),
		SkippedCycles:     p.skippedCycles.Load(),
		ItemsEmitted:      p.itemsEmitted.Load(),
		Errors:            p.errorCount.Load(),
		CachedItems:       p.cache.Len(),
		ActiveFeeds:       len(p.active),
		Running:           p.running.Load(),
		LastCycleDuration: p.lastCycleDuration,
	}
	if p.lastCycleAt != nil {
		at := *p.lastCycleAt
		stats.LastCycleAt = &at
	}
	return stats
}
