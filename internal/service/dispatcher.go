// Package service drives media delivery: partitioning resolved
// descriptors by kind and pushing each one to the chat, with the video
// fallback pipeline for assets Telegram refuses to fetch itself.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iconidentify/xrelay/internal/domain"
	"github.com/iconidentify/xrelay/internal/telegram"
)

// Dispatcher delivers one message's resolved media to a chat. It owns
// the descriptors for the duration of a delivery pass and is the only
// writer of the stats counters.
type Dispatcher struct {
	messenger telegram.Messenger
	videos    *VideoDelivery
	stats     *domain.Stats
	logger    *slog.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(messenger telegram.Messenger, videos *VideoDelivery, stats *domain.Stats, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		videos:    videos,
		stats:     stats,
		logger:    logger,
	}
}

// Dispatch partitions media by kind and delivers everything: images as
// one batched album, animations one by one, videos through the
// fallback pipeline. A failed video never aborts its siblings; photo
// and animation delivery errors propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, media []domain.Media, tag string) error {
	var images, animations, videos []domain.Media
	for _, m := range media {
		switch m.Kind {
		case domain.MediaKindImage:
			images = append(images, m)
		case domain.MediaKindAnimation:
			animations = append(animations, m)
		case domain.MediaKindVideo:
			videos = append(videos, m)
		}
	}

	if len(images) > 0 {
		if err := d.sendImages(ctx, chatID, images, tag); err != nil {
			return fmt.Errorf("send photo album: %w", err)
		}
		d.stats.AddMedia(int64(len(images)))
	}

	for _, gif := range animations {
		if err := d.messenger.SendAnimation(ctx, chatID, gif.URL, tag); err != nil {
			return fmt.Errorf("send animation: %w", err)
		}
		d.stats.AddMedia(1)
	}

	for _, video := range videos {
		outcome := d.videos.Deliver(ctx, chatID, video, tag)
		d.logger.Info("video delivery finished",
			"url", video.URL,
			"outcome", outcome,
		)
		if outcome.Delivered() {
			d.stats.AddMedia(1)
		}
	}

	return nil
}

// sendImages sends every image as one atomic media group. The caption
// goes on the first item only; Telegram shows it under the album.
func (d *Dispatcher) sendImages(ctx context.Context, chatID int64, images []domain.Media, tag string) error {
	photos := make([]telegram.PhotoItem, 0, len(images))
	for i, img := range images {
		caption := ""
		if i == 0 {
			caption = tag
		}
		photos = append(photos, telegram.PhotoItem{
			URL:     originalSizeURL(img.URL),
			Caption: caption,
		})
	}

	return d.messenger.SendPhotoAlbum(ctx, chatID, photos)
}

// originalSizeURL asks the image host for the original resolution
// unless the URL already carries a size or format hint.
func originalSizeURL(url string) string {
	if strings.Contains(url, "format=") || strings.Contains(url, "name=") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&name=orig"
	}
	return url + "?name=orig"
}
