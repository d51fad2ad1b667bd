package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/telegram"
)

// Bot owns the long-polling Telegram connection and routes updates to
// the handler. Command handlers and the default (message) handler run
// in their own goroutines, one per update.
type Bot struct {
	api      *tgbot.Bot
	cfg      config.BotConfig
	logger   *slog.Logger
	handler  *Handler
	reporter *Reporter

	messenger telegram.Messenger
}

// New creates the Telegram connection. Bind must be called before Run.
func New(cfg config.BotConfig, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	b := &Bot{
		cfg:    cfg,
		logger: logger,
	}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(b.onMessage),
	}
	if cfg.APIBaseURL != "" {
		// Local Bot API server lifts the upload limit to 2GB.
		logger.Info("using local bot api server", "url", cfg.APIBaseURL)
		opts = append(opts, tgbot.WithServerURL(cfg.APIBaseURL))
	}

	api, err := tgbot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.api = api

	return b, nil
}

// API exposes the underlying bot for the Messenger wrapper.
func (b *Bot) API() *tgbot.Bot {
	return b.api
}

// Bind attaches the pipeline and registers the command routes.
func (b *Bot) Bind(handler *Handler, reporter *Reporter, messenger telegram.Messenger) {
	b.handler = handler
	b.reporter = reporter
	b.messenger = messenger

	b.api.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, b.command(handlerStart))
	b.api.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, b.command(handlerHelp))
	b.api.RegisterHandler(tgbot.HandlerTypeMessageText, "/stats", tgbot.MatchTypeExact, b.command(handlerStats))
	b.api.RegisterHandler(tgbot.HandlerTypeMessageText, "/resetstats", tgbot.MatchTypeExact, b.command(handlerResetStats))
}

// SetupCommands publishes the command menus: the public pair for
// everyone, the stats pair only in the operator chat. Advisory; the
// bot works without menus.
func (b *Bot) SetupCommands(ctx context.Context) {
	public := []telegram.Command{
		{Name: "start", Description: "Start the bot"},
		{Name: "help", Description: "Help message"},
	}
	dev := append(public,
		telegram.Command{Name: "stats", Description: "Get bot statistics"},
		telegram.Command{Name: "resetstats", Description: "Reset bot statistics"},
	)

	if err := b.messenger.SetCommands(ctx, public); err != nil {
		b.logger.Warn("failed to set public commands", "error", err)
	}

	if b.cfg.DeveloperID != 0 {
		if err := b.messenger.SetChatCommands(ctx, b.cfg.DeveloperID, dev); err != nil {
			b.logger.Warn("failed to set developer commands", "error", err)
		}
	}
}

// Run starts long polling and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("bot started")
	b.api.Start(ctx)
	b.logger.Info("bot stopped")
}

type commandKind int

const (
	handlerStart commandKind = iota
	handlerHelp
	handlerStats
	handlerResetStats
)

func (b *Bot) command(kind commandKind) tgbot.HandlerFunc {
	return func(ctx context.Context, api *tgbot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		chatID := update.Message.Chat.ID
		userID := update.Message.From.ID

		switch kind {
		case handlerStart:
			b.handler.Start(ctx, chatID)
		case handlerHelp:
			b.handler.Help(ctx, chatID)
		case handlerStats:
			b.handler.Stats(ctx, chatID, userID)
		case handlerResetStats:
			b.handler.ResetStats(ctx, chatID, userID)
		}
	}
}

// onMessage is the default handler: every non-command text message
// goes through the delivery pipeline. Anything escaping the pipeline
// is caught here and forwarded to the operator.
func (b *Bot) onMessage(ctx context.Context, api *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.reporter.Report(ctx, fmt.Errorf("panic while handling update: %v", r), string(debug.Stack()))
		}
	}()

	b.handler.OnMessage(ctx, update.Message.Chat.ID, update.Message.From.ID, update.Message.Text)
}
