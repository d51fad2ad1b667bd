// Package telegram wraps the Telegram Bot API behind the capability set
// the delivery pipeline needs.
package telegram

import (
	"context"
	"io"
)

// PhotoItem is one entry of a batched photo send.
type PhotoItem struct {
	URL     string
	Caption string
}

// VideoParams carries the send options shared by URL and file uploads.
// Zero Width/Height means unknown and is omitted from the API call.
type VideoParams struct {
	Caption           string
	Width             int
	Height            int
	SupportsStreaming bool
}

// Command describes one entry of the bot command menu.
type Command struct {
	Name        string
	Description string
}

// Messenger is the platform capability set consumed by the pipeline.
// Every method maps to exactly one Bot API call; failures come back as
// ordinary errors and are never fatal to the caller.
type Messenger interface {
	// SendMessage sends plain text and returns the new message id.
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)

	// SendMessageHTML sends HTML-formatted text.
	SendMessageHTML(ctx context.Context, chatID int64, text string) error

	// SendPhotoAlbum sends all photos as one atomic media group.
	SendPhotoAlbum(ctx context.Context, chatID int64, photos []PhotoItem) error

	SendAnimation(ctx context.Context, chatID int64, url, caption string) error

	// SendVideoURL sends a video by remote URL reference.
	SendVideoURL(ctx context.Context, chatID int64, url string, params VideoParams) error

	// SendVideoFile uploads local video bytes, with an optional
	// thumbnail stream (nil for none).
	SendVideoFile(ctx context.Context, chatID int64, video io.Reader, thumbnail io.Reader, params VideoParams) error

	SendDocument(ctx context.Context, chatID int64, filename string, data io.Reader, caption string) error

	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// SetCommands registers the global command menu.
	SetCommands(ctx context.Context, commands []Command) error

	// SetChatCommands registers a command menu visible in one chat only.
	SetChatCommands(ctx context.Context, chatID int64, commands []Command) error
}
