package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/lysyi3m/score-comb/app/football"
	"github.com/lysyi3m/score-comb/app/subscription"
)

var _ subscription.Store = (*SubscriptionRepository)(nil)

var subscriptionColumns = []string{"subscription_id", "team", "goals", "events", "result"}

var preferenceColumns = map[football.Category]string{
	football.CategoryGoal:   "goals",
	football.CategoryEvent:  "events",
	football.CategoryResult: "result",
}

// SubscriptionRepository handles database operations for subscriptions
type SubscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Find returns matching subscriptions in insertion order.
func (r *SubscriptionRepository) Find(ctx context.Context, q subscription.Query) ([]subscription.Subscription, error) {
	prefs := sq.Or{}
	for _, c := range q.Categories {
		if column, ok := preferenceColumns[c]; ok {
			prefs = append(prefs, sq.Eq{column: true})
		}
	}
	if len(q.Teams) == 0 || len(prefs) == 0 {
		return nil, nil
	}

	query, args, err := sq.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"team": q.Teams}).
		Where(prefs).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subs, nil
}

func (r *SubscriptionRepository) Insert(ctx context.Context, s subscription.Subscription) (subscription.Subscription, error) {
	query, args, err := sq.Insert("subscriptions").
		Columns(subscriptionColumns...).
		Values(s.ID, s.Team, s.Preferences.Goals, s.Preferences.Events, s.Preferences.Result).
		ToSql()
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return subscription.Subscription{}, fmt.Errorf("%w: %s", subscription.ErrDuplicate, s.ID)
		}
		return subscription.Subscription{}, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return s, nil
}

// Remove deletes the subscription with the given ID. A missing ID removes nothing.
func (r *SubscriptionRepository) Remove(ctx context.Context, id string) (int64, error) {
	query, args, err := sq.Delete("subscriptions").Where(sq.Eq{"subscription_id": id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete subscription: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

func (r *SubscriptionRepository) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	query, args, err := sq.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"subscription_id": id}).
		ToSql()
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to build query: %w", err)
	}

	s, err := scanSubscription(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return subscription.Subscription{}, fmt.Errorf("%w: %s", subscription.ErrNotFound, id)
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("subscriptions").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (subscription.Subscription, error) {
	var s subscription.Subscription
	err := row.Scan(&s.ID, &s.Team, &s.Preferences.Goals, &s.Preferences.Events, &s.Preferences.Result)
	return s, err
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
