package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iconidentify/xrelay/internal/domain"
	"github.com/iconidentify/xrelay/internal/downloader"
	"github.com/iconidentify/xrelay/internal/telegram"
)

// User-facing status texts for the fallback path.
const (
	statusDownloading  = "Telegram rejected the URL. Downloading locally to re-upload, this might take a while..."
	statusSent         = "Video sent successfully."
	statusMayAppear    = "Upload timed out, but the video may still appear shortly..."
	statusFailedPrefix = "Failed to send video. Direct link: "
)

// VideoDelivery drives one video through direct-URL delivery and, when
// Telegram rejects the URL, through the streamed download + re-upload
// fallback. Scratch files live under dataDir and are removed on every
// exit path.
type VideoDelivery struct {
	messenger telegram.Messenger
	fetcher   *downloader.Fetcher
	dataDir   string
	logger    *slog.Logger
}

// NewVideoDelivery creates a new video delivery pipeline.
func NewVideoDelivery(messenger telegram.Messenger, fetcher *downloader.Fetcher, dataDir string, logger *slog.Logger) *VideoDelivery {
	return &VideoDelivery{
		messenger: messenger,
		fetcher:   fetcher,
		dataDir:   dataDir,
		logger:    logger,
	}
}

// Deliver sends one video to the chat and reports how it ended. The
// direct attempt never touches the disk; only a rejected URL send
// starts the fallback.
func (d *VideoDelivery) Deliver(ctx context.Context, chatID int64, video domain.Media, caption string) domain.Outcome {
	params := telegram.VideoParams{
		Caption:           caption,
		Width:             video.Width,
		Height:            video.Height,
		SupportsStreaming: true,
	}

	err := d.messenger.SendVideoURL(ctx, chatID, video.URL, params)
	if err == nil {
		return domain.OutcomeDirect
	}
	if ctx.Err() != nil {
		// Not a platform rejection; the whole delivery was cancelled.
		d.logger.Warn("direct video send aborted", "url", video.URL, "error", err)
		return domain.OutcomeFailed
	}

	d.logger.Warn("direct video send rejected, falling back to local upload",
		"url", video.URL,
		"error", err,
	)

	// Advisory: the fallback proceeds even if the notice fails.
	statusID, err := d.messenger.SendMessage(ctx, chatID, statusDownloading)
	if err != nil {
		d.logger.Warn("failed to send status notice", "error", err)
		statusID = 0
	}

	return d.deliverFallback(ctx, chatID, video, params, statusID)
}

// deliverFallback runs LocalFetch -> LocalUpload (-> ThumbRetry) and
// guarantees scratch cleanup on every return.
func (d *VideoDelivery) deliverFallback(ctx context.Context, chatID int64, video domain.Media, params telegram.VideoParams, statusID int) domain.Outcome {
	rid := video.ResourceID
	if rid == "" {
		rid = uuid.NewString()
	}

	if err := os.MkdirAll(d.dataDir, 0755); err != nil {
		d.logger.Error("failed to create scratch directory", "dir", d.dataDir, "error", err)
		d.editStatus(ctx, chatID, statusID, statusFailedPrefix+video.URL)
		return domain.OutcomeFailed
	}

	videoPath := filepath.Join(d.dataDir, fmt.Sprintf("video_%s.mp4", rid))
	thumbPath := ""
	defer func() {
		d.removeScratch(videoPath)
		d.removeScratch(thumbPath)
	}()

	if err := d.fetcher.FetchToFile(ctx, video.URL, videoPath); err != nil {
		d.logger.Error("fallback video fetch failed",
			"url", video.URL,
			"error", fmt.Errorf("%w: %w", domain.ErrFetchFailed, err),
		)
		d.editStatus(ctx, chatID, statusID, statusFailedPrefix+video.URL)
		return domain.OutcomeFailed
	}

	// Thumbnail fetch is best-effort; the upload proceeds without one.
	if video.ThumbnailURL != "" {
		path := filepath.Join(d.dataDir, fmt.Sprintf("thumb_%s.jpg", rid))
		if err := d.fetcher.FetchToFile(ctx, video.ThumbnailURL, path); err != nil {
			d.logger.Warn("thumbnail fetch failed, uploading without thumbnail",
				"url", video.ThumbnailURL,
				"error", err,
			)
		} else {
			thumbPath = path
		}
	}

	if err := d.uploadLocal(ctx, chatID, videoPath, thumbPath, params); err != nil {
		if isTimeout(err) {
			// Ambiguous: Telegram may have accepted the upload right
			// before the deadline. Reported as "may still appear" and
			// not counted as a failure.
			d.logger.Warn("local upload timed out, may have succeeded", "url", video.URL, "error", err)
			d.editStatus(ctx, chatID, statusID, statusMayAppear)
			return domain.OutcomeFallback
		}

		d.logger.Error("local upload failed", "url", video.URL, "error", err)
		d.editStatus(ctx, chatID, statusID, statusFailedPrefix+video.URL)
		return domain.OutcomeFailed
	}

	d.clearStatus(ctx, chatID, statusID)
	return domain.OutcomeFallback
}

// uploadLocal sends the scratch video with its thumbnail if one was
// fetched. A thumbnail-specific rejection gets exactly one retry with
// the stream rewound and no thumbnail attached.
func (d *VideoDelivery) uploadLocal(ctx context.Context, chatID int64, videoPath, thumbPath string, params telegram.VideoParams) error {
	videoFile, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open scratch video: %w", err)
	}
	defer videoFile.Close()

	if thumbPath == "" {
		return d.messenger.SendVideoFile(ctx, chatID, videoFile, nil, params)
	}

	thumbFile, err := os.Open(thumbPath)
	if err != nil {
		d.logger.Warn("failed to open scratch thumbnail, uploading without it", "error", err)
		return d.messenger.SendVideoFile(ctx, chatID, videoFile, nil, params)
	}
	defer thumbFile.Close()

	err = d.messenger.SendVideoFile(ctx, chatID, videoFile, thumbFile, params)
	if err == nil || !isThumbnailRejection(err) {
		return err
	}

	d.logger.Warn("thumbnail rejected by Telegram, retrying without it", "error", err)
	if _, seekErr := videoFile.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("rewind scratch video: %w", errors.Join(err, seekErr))
	}

	return d.messenger.SendVideoFile(ctx, chatID, videoFile, nil, params)
}

// editStatus is advisory: failures are logged, never propagated.
func (d *VideoDelivery) editStatus(ctx context.Context, chatID int64, statusID int, text string) {
	if statusID == 0 {
		return
	}
	if err := d.messenger.EditMessage(ctx, chatID, statusID, text); err != nil {
		d.logger.Warn("failed to edit status message", "error", err)
	}
}

// clearStatus removes the status notice after a successful upload,
// falling back to an edit when deletion is not allowed. Advisory.
func (d *VideoDelivery) clearStatus(ctx context.Context, chatID int64, statusID int) {
	if statusID == 0 {
		return
	}
	if err := d.messenger.DeleteMessage(ctx, chatID, statusID); err != nil {
		d.logger.Warn("failed to delete status message", "error", err)
		d.editStatus(ctx, chatID, statusID, statusSent)
	}
}

// removeScratch is advisory: a leftover file is worth a log line, not
// a failed delivery.
func (d *VideoDelivery) removeScratch(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Warn("failed to remove scratch file", "path", path, "error", err)
	}
}

// isThumbnailRejection matches Telegram's thumbnail-specific upload
// complaints (e.g. "Bad Request: wrong thumbnail dimensions").
func isThumbnailRejection(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "thumb")
}

// isTimeout classifies an upload error as a timeout by its text. There
// is no confirmation call in the Bot API, so "timed out" and "possibly
// succeeded" cannot be told apart.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
