package feed

import (
	"time"
)

// Feed processing types

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string // Plain text, markup stripped
	PublishedAt time.Time
	FeedURL     string // Feed the item was read from
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled      bool `yaml:"enabled"`
	PollInterval int  `yaml:"poll_interval"` // seconds, 0 uses the process-wide interval
	Timeout      int  `yaml:"timeout"`       // seconds
}
