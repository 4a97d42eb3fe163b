package subscription

import (
	"context"
	"errors"
	"slices"

	"github.com/lysyi3m/score-comb/app/football"
)

// MockStore keeps subscriptions in insertion order.
type MockStore struct {
	subs    []Subscription
	findErr error
	queries []Query
}

func (m *MockStore) Find(ctx context.Context, q Query) ([]Subscription, error) {
	m.queries = append(m.queries, q)
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []Subscription
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

func (m *MockStore) Insert(ctx context.Context, s Subscription) (Subscription, error) {
	for _, existing := range m.subs {
		if existing.ID == s.ID {
			return Subscription{}, ErrDuplicate
		}
	}
	m.subs = append(m.subs, s)
	return s, nil
}

func (m *MockStore) Remove(ctx context.Context, id string) (int64, error) {
	before := len(m.subs)
	m.subs = slices.DeleteFunc(m.subs, func(s Subscription) bool { return s.ID == id })
	return int64(before - len(m.subs)), nil
}

func (m *MockStore) Get(ctx context.Context, id string) (Subscription, error) {
	for _, s := range m.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return Subscription{}, ErrNotFound
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	return len(m.subs), nil
}

var errStoreDown = errors.New("store down")
