package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/score-comb/app/football"
)

const (
	MessageSubscribe     = "subscribe"
	MessageSubscriptions = "subscriptions"
	MessageUnsubscribe   = "unsubscribe"
)

var ErrUnknownCommand = errors.New("unknown subscription command")

// Command is an inbound subscription message:
//
//	{"message": "subscribe", "data": {"subscriptions": [{"id": "..", "data": {"team": ".."}}]}}
type Command struct {
	Message string      `json:"message"`
	Data    CommandData `json:"data"`
}

type CommandData struct {
	Subscriptions []json.RawMessage `json:"subscriptions"`
}

type addEntry struct {
	ID   string `json:"id"`
	Data struct {
		Team string `json:"team"`
		Preferences
	} `json:"data"`
}

type removeEntry struct {
	ID string `json:"id"`
}

// Result counts the entries of a command that were applied. Rejected entries
// are reported through the error returned alongside it.
type Result struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Rejected int `json:"rejected"`
}

type CommandHandler struct {
	store Store
}

func NewCommandHandler(store Store) *CommandHandler {
	return &CommandHandler{store: store}
}

// Handle applies every entry of the command. A failing entry does not stop
// the batch; all entry errors are joined into the returned error.
func (h *CommandHandler) Handle(ctx context.Context, cmd Command) (Result, error) {
	var result Result
	var errs []error

	switch cmd.Message {
	case MessageSubscribe, MessageSubscriptions:
		for i, raw := range cmd.Data.Subscriptions {
			s, err := h.add(ctx, raw)
			if err != nil {
				result.Rejected++
				errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			result.Added++
			slog.Debug("Subscription added", "id", s.ID, "team", s.Team)
		}
	case MessageUnsubscribe:
		for i, raw := range cmd.Data.Subscriptions {
			n, err := h.remove(ctx, raw)
			if err != nil {
				result.Rejected++
				errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
				continue
			}
			result.Removed += int(n)
			slog.Debug("Subscriptions removed", "count", n)
		}
	default:
		return result, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Message)
	}

	return result, errors.Join(errs...)
}

func (h *CommandHandler) add(ctx context.Context, raw json.RawMessage) (Subscription, error) {
	var entry addEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Subscription{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return h.Add(ctx, Subscription{
		ID:          entry.ID,
		Team:        entry.Data.Team,
		Preferences: entry.Data.Preferences,
	})
}

func (h *CommandHandler) remove(ctx context.Context, raw json.RawMessage) (int64, error) {
	var entry removeEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return h.Remove(ctx, entry.ID)
}

// Add validates and stores a single subscription.
func (h *CommandHandler) Add(ctx context.Context, s Subscription) (Subscription, error) {
	s.Team = football.TeamName(s.Team)
	if s.ID == "" || s.Team == "" {
		return Subscription{}, fmt.Errorf("%w: id and team are required", ErrInvalid)
	}

	stored, err := h.store.Insert(ctx, s)
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to add subscription %s: %w", s.ID, err)
	}
	return stored, nil
}

// Remove deletes a subscription and returns how many records were removed.
func (h *CommandHandler) Remove(ctx context.Context, id string) (int64, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalid)
	}

	n, err := h.store.Remove(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to remove subscription %s: %w", id, err)
	}
	return n, nil
}
