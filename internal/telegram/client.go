package telegram

import (
	"context"
	"errors"
	"io"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Client implements Messenger over github.com/go-telegram/bot.
type Client struct {
	bot *tgbot.Bot
}

// NewClient wraps an already constructed bot.
func NewClient(b *tgbot.Bot) *Client {
	return &Client{bot: b}
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := c.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) SendMessageHTML(ctx context.Context, chatID int64, text string) error {
	_, err := c.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	return err
}

func (c *Client) SendPhotoAlbum(ctx context.Context, chatID int64, photos []PhotoItem) error {
	media := make([]models.InputMedia, 0, len(photos))
	for _, p := range photos {
		media = append(media, &models.InputMediaPhoto{
			Media:   p.URL,
			Caption: p.Caption,
		})
	}

	_, err := c.bot.SendMediaGroup(ctx, &tgbot.SendMediaGroupParams{
		ChatID: chatID,
		Media:  media,
	})
	return err
}

func (c *Client) SendAnimation(ctx context.Context, chatID int64, url, caption string) error {
	_, err := c.bot.SendAnimation(ctx, &tgbot.SendAnimationParams{
		ChatID:    chatID,
		Animation: &models.InputFileString{Data: url},
		Caption:   caption,
	})
	return err
}

func (c *Client) SendVideoURL(ctx context.Context, chatID int64, url string, params VideoParams) error {
	_, err := c.bot.SendVideo(ctx, &tgbot.SendVideoParams{
		ChatID:            chatID,
		Video:             &models.InputFileString{Data: url},
		Caption:           params.Caption,
		Width:             params.Width,
		Height:            params.Height,
		SupportsStreaming: params.SupportsStreaming,
	})
	return err
}

func (c *Client) SendVideoFile(ctx context.Context, chatID int64, video io.Reader, thumbnail io.Reader, params VideoParams) error {
	p := &tgbot.SendVideoParams{
		ChatID:            chatID,
		Video:             &models.InputFileUpload{Filename: "video.mp4", Data: video},
		Caption:           params.Caption,
		Width:             params.Width,
		Height:            params.Height,
		SupportsStreaming: params.SupportsStreaming,
	}
	if thumbnail != nil {
		p.Thumbnail = &models.InputFileUpload{Filename: "thumb.jpg", Data: thumbnail}
	}

	_, err := c.bot.SendVideo(ctx, p)
	return err
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data io.Reader, caption string) error {
	_, err := c.bot.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: data},
		Caption:  caption,
	})
	return err
}

func (c *Client) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.bot.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	return err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

func (c *Client) SetCommands(ctx context.Context, commands []Command) error {
	_, err := c.bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: toBotCommands(commands),
	})
	return err
}

func (c *Client) SetChatCommands(ctx context.Context, chatID int64, commands []Command) error {
	_, err := c.bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: toBotCommands(commands),
		Scope:    &models.BotCommandScopeChat{ChatID: chatID},
	})
	return err
}

func toBotCommands(commands []Command) []models.BotCommand {
	out := make([]models.BotCommand, 0, len(commands))
	for _, c := range commands {
		out = append(out, models.BotCommand{
			Command:     c.Name,
			Description: c.Description,
		})
	}
	return out
}

// IsForbidden reports whether err is the platform's permission denial,
// i.e. the user blocked the bot.
func IsForbidden(err error) bool {
	return errors.Is(err, tgbot.ErrorForbidden)
}

// IsConflict reports whether err is the platform's concurrent-instance
// conflict (another process polling with the same token).
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tgbot.ErrorConflict) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "conflict")
}
