package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/score-comb/app/subscription"
)

func NewHandler(pipeline PipelineInterface, p PollerInterface, notifier NotifierInterface) *Handler {
	return &Handler{
		pipeline: pipeline,
		poller:   p,
		notifier: notifier,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feeds":     len(h.poller.Feeds()),
	}

	if count, err := h.pipeline.SubscriptionCount(c.Request.Context()); err == nil {
		health["subscriptions"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := h.poller.Stats()

	polling := map[string]any{
		"interval":        h.poller.Interval().String(),
		"running":         stats.Running,
		"cycles":          stats.Cycles,
		"skipped_cycles":  stats.SkippedCycles,
		"items_emitted":   stats.ItemsEmitted,
		"errors":          stats.Errors,
		"cached_items":    stats.CachedItems,
		"active_feeds":    stats.ActiveFeeds,
		"last_cycle_time": stats.LastCycleDuration.String(),
	}
	if stats.LastCycleAt != nil {
		polling["last_cycle_at"] = stats.LastCycleAt.Format(time.RFC3339)
	}

	response := map[string]any{
		"polling":       polling,
		"notifications": h.notifier.Stats(),
	}
	if count, err := h.pipeline.SubscriptionCount(c.Request.Context()); err == nil {
		response["subscriptions"] = count
	}

	c.JSON(http.StatusOK, response)
}

// PostSubscriptions applies an inbound subscribe/subscriptions/unsubscribe
// command. Rejected entries are reported next to the applied counts.
func (h *Handler) PostSubscriptions(c *gin.Context) {
	var cmd subscription.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid command", "message": err.Error()})
		return
	}

	result, err := h.pipeline.HandleCommand(c.Request.Context(), cmd)
	if errors.Is(err, subscription.ErrUnknownCommand) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown command", "message": err.Error()})
		return
	}

	response := CommandResponse{Result: result}
	if err != nil {
		slog.Warn("Subscription command partially rejected", "message", cmd.Message, "rejected", result.Rejected, "error", err)
		response.Errors = errorMessages(err)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	feeds := h.poller.Feeds()
	infos := make([]FeedInfo, 0, len(feeds))

	for _, f := range feeds {
		interval := f.Interval
		if interval == 0 {
			interval = h.poller.Interval()
		}

		info := FeedInfo{
			Name:     f.Name,
			URL:      f.URL,
			Interval: interval.String(),
			Active:   h.poller.IsActive(f.URL),
		}
		if f.Timeout > 0 {
			info.Timeout = f.Timeout.String()
		}
		infos = append(infos, info)
	}

	c.JSON(http.StatusOK, map[string]any{
		"feeds": infos,
		"total": len(infos),
	})
}

func (h *Handler) APIGetSubscription(c *gin.Context) {
	id := c.Param("id")

	s, err := h.pipeline.Subscription(c.Request.Context(), id)
	if errors.Is(err, subscription.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_subscription", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{
		ID:     s.ID,
		Team:   s.Team,
		Goals:  s.Preferences.Goals,
		Events: s.Preferences.Events,
		Result: s.Preferences.Result,
	})
}

func (h *Handler) APIDeleteSubscription(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.pipeline.Unsubscribe(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_subscription", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// APIPoll runs a poll cycle now and waits for it.
func (h *Handler) APIPoll(c *gin.Context) {
	if !h.poller.Poll(context.WithoutCancel(c.Request.Context())) {
		c.JSON(http.StatusConflict, gin.H{"error": "Poll cycle already running"})
		return
	}

	stats := h.poller.Stats()
	c.JSON(http.StatusOK, map[string]any{
		"cycles":        stats.Cycles,
		"items_emitted": stats.ItemsEmitted,
		"errors":        stats.Errors,
	})
}

func errorMessages(err error) []string {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Error())
	}
	return messages
}
