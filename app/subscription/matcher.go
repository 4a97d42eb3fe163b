package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/score-comb/app/football"
)

// GraceWindow is how old a final score read on a feed's first poll may be
// and still be announced.
const GraceWindow = 5 * time.Minute

type Matcher struct {
	store Store
}

func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// Match returns the IDs of subscriptions following home or guest that opted
// into any of the categories, in store order.
func (m *Matcher) Match(ctx context.Context, home, guest string, categories []football.Category) ([]string, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	teams := []string{home}
	if guest != home {
		teams = append(teams, guest)
	}

	subs, err := m.store.Find(ctx, Query{Teams: teams, Categories: categories})
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions: %w", err)
	}

	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Suppressed reports whether an event must not be matched at all: a final
// score older than GraceWindow read while its feed is still on its first poll.
func Suppressed(feedActive bool, ev football.Event, publishedAt, now time.Time) bool {
	if feedActive || !ev.IsMatchFinished() {
		return false
	}
	return now.Sub(publishedAt) > GraceWindow
}
