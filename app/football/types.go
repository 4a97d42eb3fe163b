// Package football turns live-score feed entries into match events and maps
// them to notification categories.
package football

// Event is a match event extracted from a feed entry description.
type Event struct {
	Kind  string
	Home  string
	Guest string
	Score string
}

// Category is a subscriber preference a notification is routed by.
type Category string

const (
	CategoryEvent  Category = "event"
	CategoryGoal   Category = "goal"
	CategoryResult Category = "result"
)

// Classification is the notification text for an event kind together with
// the categories it is delivered to. A subscriber opted into any of the
// categories receives it.
type Classification struct {
	Categories []Category
	Text       string
}

const (
	KindKickOff         = "Kick Off"
	KindHalftime        = "Halftime"
	KindSecondHalf      = "2nd Half Started"
	KindMatchPostponed  = "- Match Postponed"
	KindMatchFinished   = "Match Finished"
	kindGoalPrefix      = "Goal"
	kindGoalForPrefix   = "Goal for"
	localizedGoalPrefix = "Tor für"
)
