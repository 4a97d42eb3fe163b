package main

import (
	"log/slog"
	"time"

	"github.com/lysyi3m/score-comb/app/cfg"
	"github.com/lysyi3m/score-comb/app/feed"
	"github.com/lysyi3m/score-comb/app/poller"
)

// buildFeeds registers --feed URLs in the config cache and merges them, in
// the given order, with the enabled YAML configurations. A URL listed twice
// is polled once, first definition wins.
func buildFeeds(appCfg *cfg.Cfg, configCache *feed.ConfigCache) []poller.Feed {
	timeout := appCfg.FeedTimeoutDuration()
	seen := make(map[string]bool)
	var feeds []poller.Feed

	add := func(c *feed.Config) {
		if seen[c.URL] {
			slog.Warn("Duplicate feed URL ignored", "feed", c.Name, "url", c.URL)
			return
		}
		seen[c.URL] = true

		f := poller.Feed{
			Name:     c.Name,
			URL:      c.URL,
			Interval: time.Duration(c.Settings.PollInterval) * time.Second,
			Timeout:  timeout,
		}
		if c.Settings.Timeout > 0 {
			f.Timeout = time.Duration(c.Settings.Timeout) * time.Second
		}
		feeds = append(feeds, f)
	}

	fromFlags := make(map[string]bool)
	for _, url := range appCfg.Feeds {
		err := configCache.Add(&feed.Config{Name: url, URL: url, Settings: feed.ConfigSettings{Enabled: true}})
		if err != nil {
			slog.Warn("Feed URL ignored", "url", url, "error", err)
			continue
		}
		fromFlags[url] = true

		c, err := configCache.GetConfig(url)
		if err != nil {
			slog.Warn("Feed URL ignored", "url", url, "error", err)
			continue
		}
		add(c)
	}

	for _, c := range configCache.GetEnabledConfigs() {
		if fromFlags[c.Name] {
			continue
		}
		add(c)
	}

	return feeds
}
