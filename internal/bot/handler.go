// Package bot glues Telegram updates to the delivery pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/domain"
	"github.com/iconidentify/xrelay/internal/extract"
	"github.com/iconidentify/xrelay/internal/service"
	"github.com/iconidentify/xrelay/internal/telegram"
)

const helpText = "Send tweet link here and I will download media in the best available quality for you."

// Resolver turns a post id into its media descriptors.
type Resolver interface {
	Resolve(ctx context.Context, postID string) ([]domain.Media, error)
}

// StatsStore persists the delivery counters across restarts.
type StatsStore interface {
	Save(ctx context.Context, stats *domain.Stats) error
	Reset(ctx context.Context) error
}

// Handler processes inbound messages and commands. One handler serves
// all chats; per-update state lives on the stack of each invocation.
type Handler struct {
	cfg        config.BotConfig
	messenger  telegram.Messenger
	resolver   Resolver
	dispatcher *service.Dispatcher
	stats      *domain.Stats
	store      StatsStore
	logger     *slog.Logger
}

// NewHandler creates the message handler.
func NewHandler(
	cfg config.BotConfig,
	messenger telegram.Messenger,
	resolver Resolver,
	dispatcher *service.Dispatcher,
	stats *domain.Stats,
	store StatsStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:        cfg,
		messenger:  messenger,
		resolver:   resolver,
		dispatcher: dispatcher,
		stats:      stats,
		store:      store,
		logger:     logger,
	}
}

// OnMessage runs the delivery pipeline for one inbound text message.
// Each post id is processed in isolation: a bad post never aborts its
// siblings.
func (h *Handler) OnMessage(ctx context.Context, chatID, userID int64, text string) {
	if h.cfg.Private && userID != h.cfg.DeveloperID {
		h.logger.Info("access denied", "user_id", userID)
		h.notify(ctx, chatID, fmt.Sprintf("Access denied. Your id (%d) is not whitelisted.", userID))
		return
	}

	h.stats.AddMessages(1)
	h.flushStats(ctx)

	ids := extract.PostIDs(text)
	tag := extract.Tag(text)

	if len(ids) == 0 {
		// Stay quiet unless the user clearly tried to share a link.
		if extract.LooksLikePostLink(text) {
			h.notify(ctx, chatID, "No supported tweet link found.")
		}
		return
	}

	for _, id := range ids {
		err := h.handlePost(ctx, chatID, id, tag)
		if err == nil {
			continue
		}

		var lookupErr *domain.LookupError
		if errors.As(err, &lookupErr) {
			h.notify(ctx, chatID, fmt.Sprintf("Error scraping tweet %s: %s", id, lookupErr.Reason))
			continue
		}

		h.logger.Error("tweet processing failed", "tweet_id", id, "error", err)
		h.notify(ctx, chatID, fmt.Sprintf("An unexpected error occurred for tweet %s.", id))
	}

	h.flushStats(ctx)
}

// handlePost resolves and delivers one post. Panics are converted to
// errors so one misbehaving post cannot take down the update handler.
func (h *Handler) handlePost(ctx context.Context, chatID int64, postID, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing tweet %s: %v", postID, r)
		}
	}()

	media, err := h.resolver.Resolve(ctx, postID)
	if err != nil {
		return err
	}

	if len(media) == 0 {
		h.notify(ctx, chatID, fmt.Sprintf("Tweet %s has no media.", postID))
		return nil
	}

	return h.dispatcher.Dispatch(ctx, chatID, media, tag)
}

// Start handles /start.
func (h *Handler) Start(ctx context.Context, chatID int64) {
	h.notify(ctx, chatID, "Hi!\n"+helpText)
}

// Help handles /help.
func (h *Handler) Help(ctx context.Context, chatID int64) {
	h.notify(ctx, chatID, helpText)
}

// Stats handles /stats. Registration scopes it to the developer chat,
// the guard here backs that up.
func (h *Handler) Stats(ctx context.Context, chatID, userID int64) {
	if !h.isDeveloper(userID) {
		return
	}

	messages, media := h.stats.Snapshot()
	h.notify(ctx, chatID, fmt.Sprintf(
		"Bot stats:\nMessages handled: %d\nMedia downloaded: %d",
		messages, media,
	))
}

// ResetStats handles /resetstats.
func (h *Handler) ResetStats(ctx context.Context, chatID, userID int64) {
	if !h.isDeveloper(userID) {
		return
	}

	h.stats.Reset()
	if err := h.store.Reset(ctx); err != nil {
		h.logger.Error("failed to reset persisted stats", "error", err)
		h.notify(ctx, chatID, "Failed to reset stats.")
		return
	}

	h.notify(ctx, chatID, "Bot stats have been reset")
}

func (h *Handler) isDeveloper(userID int64) bool {
	return h.cfg.DeveloperID != 0 && userID == h.cfg.DeveloperID
}

// notify is advisory: a failed reply is logged, never propagated.
func (h *Handler) notify(ctx context.Context, chatID int64, text string) {
	if _, err := h.messenger.SendMessage(ctx, chatID, text); err != nil {
		h.logger.Warn("failed to send notice", "error", err)
	}
}

// flushStats is advisory: the counters survive in memory even when a
// write to the store fails.
func (h *Handler) flushStats(ctx context.Context) {
	if err := h.store.Save(ctx, h.stats); err != nil {
		h.logger.Warn("failed to persist stats", "error", err)
	}
}
