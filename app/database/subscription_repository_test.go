package database

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/score-comb/app/football"
	"github.com/lysyi3m/score-comb/app/subscription"
)

func seedSubscriptions(t *testing.T, repo *SubscriptionRepository, subs ...subscription.Subscription) {
	t.Helper()
	for _, s := range subs {
		if _, err := repo.Insert(context.Background(), s); err != nil {
			t.Fatalf("Failed to insert %s: %v", s.ID, err)
		}
	}
}

func TestSubscriptionRepositoryFind(t *testing.T) {
	repo := NewSubscriptionRepository(newTestDB(t))
	seedSubscriptions(t, repo,
		subscription.Subscription{ID: "s1", Team: "Bayern", Preferences: subscription.Preferences{Goals: true}},
		subscription.Subscription{ID: "s2", Team: "Dortmund", Preferences: subscription.Preferences{Events: true}},
		subscription.Subscription{ID: "s3", Team: "Bayern", Preferences: subscription.Preferences{Result: true}},
		subscription.Subscription{ID: "s4", Team: "Schalke", Preferences: subscription.Preferences{Goals: true, Events: true, Result: true}},
	)

	tests := []struct {
		name       string
		categories []football.Category
		expected   []string
	}{
		{"goal", []football.Category{football.CategoryGoal}, []string{"s1"}},
		{"event", []football.Category{football.CategoryEvent}, []string{"s2"}},
		{"result or event", []football.Category{football.CategoryResult, football.CategoryEvent}, []string{"s2", "s3"}},
		{"unknown category", []football.Category{"other"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs, err := repo.Find(context.Background(), subscription.Query{
				Teams:      []string{"Bayern", "Dortmund"},
				Categories: tt.categories,
			})
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}

			if len(subs) != len(tt.expected) {
				t.Fatalf("Expected %d subscriptions, got %d", len(tt.expected), len(subs))
			}
			for i, s := range subs {
				if s.ID != tt.expected[i] {
					t.Errorf("Expected subscription %d to be %s, got %s", i, tt.expected[i], s.ID)
				}
			}
		})
	}
}

func TestSubscriptionRepositoryInsertDuplicate(t *testing.T) {
	repo := NewSubscriptionRepository(newTestDB(t))
	seedSubscriptions(t, repo, subscription.Subscription{ID: "s1", Team: "Bayern"})

	_, err := repo.Insert(context.Background(), subscription.Subscription{ID: "s1", Team: "Dortmund"})
	if !errors.Is(err, subscription.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}

	s, err := repo.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Team != "Bayern" {
		t.Errorf("Expected original team 'Bayern', got %s", s.Team)
	}
}

func TestSubscriptionRepositoryGet(t *testing.T) {
	repo := NewSubscriptionRepository(newTestDB(t))
	seedSubscriptions(t, repo, subscription.Subscription{
		ID:          "s1",
		Team:        "1. FC Köln",
		Preferences: subscription.Preferences{Goals: true, Result: true},
	})

	s, err := repo.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Team != "1. FC Köln" {
		t.Errorf("Expected team '1. FC Köln', got %s", s.Team)
	}
	if !s.Preferences.Goals || s.Preferences.Events || !s.Preferences.Result {
		t.Errorf("Unexpected preferences %+v", s.Preferences)
	}

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, subscription.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSubscriptionRepositoryRemoveAndCount(t *testing.T) {
	repo := NewSubscriptionRepository(newTestDB(t))
	seedSubscriptions(t, repo,
		subscription.Subscription{ID: "s1", Team: "Bayern"},
		subscription.Subscription{ID: "s2", Team: "Dortmund"},
	)

	n, err := repo.Remove(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 removed, got %d", n)
	}

	n, err = repo.Remove(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Second remove failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 removed, got %d", n)
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 subscription, got %d", count)
	}
}
