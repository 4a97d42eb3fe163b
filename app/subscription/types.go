// Package subscription holds subscriber preferences and resolves which
// subscribers receive a match event.
package subscription

import (
	"context"
	"errors"

	"github.com/lysyi3m/score-comb/app/football"
)

var (
	ErrDuplicate = errors.New("subscription already exists")
	ErrInvalid   = errors.New("invalid subscription")
	ErrNotFound  = errors.New("subscription not found")
)

type Preferences struct {
	Goals  bool `json:"goals"`
	Events bool `json:"events"`
	Result bool `json:"result"`
}

// Wants reports whether the preferences opt into the category.
func (p Preferences) Wants(c football.Category) bool {
	switch c {
	case football.CategoryGoal:
		return p.Goals
	case football.CategoryEvent:
		return p.Events
	case football.CategoryResult:
		return p.Result
	default:
		return false
	}
}

type Subscription struct {
	ID          string
	Team        string
	Preferences Preferences
}

// Query selects subscriptions following one of Teams that opted into any of
// Categories.
type Query struct {
	Teams      []string
	Categories []football.Category
}

// Store persists subscriptions. Insert rejects an existing ID with
// ErrDuplicate and Get reports a missing one with ErrNotFound.
type Store interface {
	Find(ctx context.Context, q Query) ([]Subscription, error)
	Insert(ctx context.Context, s Subscription) (Subscription, error)
	Remove(ctx context.Context, id string) (int64, error)
	Get(ctx context.Context, id string) (Subscription, error)
	Count(ctx context.Context) (int, error)
}
