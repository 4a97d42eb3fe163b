package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Feeds
	FeedsDir     string
	Feeds        []string
	PollInterval int
	FeedTimeout  int

	// Collaborators
	BackendURL   string
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
