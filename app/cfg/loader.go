package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/score-comb.db" description:"SQLite database file holding subscriptions"`

	// Feed configuration
	FeedsDir     string   `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	Feeds        []string `long:"feed" env:"FEEDS" env-delim:"," description:"Feed URL to poll (repeatable, polled in the given order)"`
	PollInterval int      `long:"poll-interval" env:"POLL_INTERVAL" default:"3600" description:"Poll interval in seconds"`
	FeedTimeout  int      `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Timeout in seconds for a single feed request"`

	// Collaborators
	BackendURL   string `long:"backend-url" env:"BACKEND_URL" description:"Base URL of the notification backend (required)" required:"true"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Score Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Zurich)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses flags and environment. A nil config with a nil error means
// help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	c := &Cfg{
		DBPath:       raw.DBPath,
		FeedsDir:     raw.FeedsDir,
		Feeds:        cleanFeeds(raw.Feeds),
		PollInterval: raw.PollInterval,
		FeedTimeout:  raw.FeedTimeout,
		BackendURL:   strings.TrimRight(raw.BackendURL, "/"),
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(c.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", c.Timezone, err)
	}

	return c, nil
}

func (c *Cfg) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.PollInterval)
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("feed timeout must be positive, got %d", c.FeedTimeout)
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %q", c.BackendURL)
	}

	return nil
}

// PollIntervalDuration returns the process-wide poll interval.
func (c *Cfg) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// FeedTimeoutDuration returns the default per-feed request timeout.
func (c *Cfg) FeedTimeoutDuration() time.Duration {
	return time.Duration(c.FeedTimeout) * time.Second
}

func cleanFeeds(feeds []string) []string {
	cleaned := make([]string, 0, len(feeds))
	for _, f := range feeds {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	return cleaned
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
