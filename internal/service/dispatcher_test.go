package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/domain"
	"github.com/iconidentify/xrelay/internal/downloader"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDispatcher(t *testing.T, fake *fakeMessenger) (*Dispatcher, *domain.Stats) {
	t.Helper()

	logger := testLogger()
	fetcher := downloader.NewFetcher(config.DownloadConfig{
		Timeout:       time.Second,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: time.Millisecond,
		UserAgent:     "test",
	}, logger)

	stats := domain.NewStats(0, 0)
	videos := NewVideoDelivery(fake, fetcher, t.TempDir(), logger)
	return NewDispatcher(fake, videos, stats, logger), stats
}

func TestDispatch_ImagesBatchedWithCaptionOnFirst(t *testing.T) {
	fake := &fakeMessenger{}
	d, stats := newTestDispatcher(t, fake)

	media := []domain.Media{
		{Kind: domain.MediaKindImage, URL: "https://pbs.twimg.com/media/a.jpg"},
		{Kind: domain.MediaKindImage, URL: "https://pbs.twimg.com/media/b.jpg?s=1"},
		{Kind: domain.MediaKindImage, URL: "https://pbs.twimg.com/media/c.jpg?format=jpg&name=large"},
	}

	if err := d.Dispatch(context.Background(), 1, media, "#alice"); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	if len(fake.albums) != 1 {
		t.Fatalf("got %d albums, want 1 batched send", len(fake.albums))
	}

	album := fake.albums[0]
	if len(album) != 3 {
		t.Fatalf("album size = %d, want 3", len(album))
	}

	if album[0].URL != "https://pbs.twimg.com/media/a.jpg?name=orig" {
		t.Errorf("bare URL should gain ?name=orig, got %q", album[0].URL)
	}
	if album[1].URL != "https://pbs.twimg.com/media/b.jpg?s=1&name=orig" {
		t.Errorf("URL with query should gain &name=orig, got %q", album[1].URL)
	}
	if album[2].URL != "https://pbs.twimg.com/media/c.jpg?format=jpg&name=large" {
		t.Errorf("URL with format hint must stay untouched, got %q", album[2].URL)
	}

	if album[0].Caption != "#alice" {
		t.Errorf("first caption = %q, want #alice", album[0].Caption)
	}
	if album[1].Caption != "" || album[2].Caption != "" {
		t.Error("only the first album item carries the caption")
	}

	if _, media := stats.Snapshot(); media != 3 {
		t.Errorf("media counter = %d, want 3 (batch size)", media)
	}
}

func TestDispatch_Animations(t *testing.T) {
	fake := &fakeMessenger{}
	d, stats := newTestDispatcher(t, fake)

	media := []domain.Media{
		{Kind: domain.MediaKindAnimation, URL: "https://video.twimg.com/g1.mp4"},
		{Kind: domain.MediaKindAnimation, URL: "https://video.twimg.com/g2.mp4"},
	}

	if err := d.Dispatch(context.Background(), 1, media, "#bob"); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	if len(fake.animations) != 2 {
		t.Errorf("got %d animation sends, want 2", len(fake.animations))
	}
	if _, media := stats.Snapshot(); media != 2 {
		t.Errorf("media counter = %d, want 2", media)
	}
}

func TestDispatch_AlbumFailurePropagatesWithoutCounting(t *testing.T) {
	fake := &fakeMessenger{failAlbum: errors.New("bad request")}
	d, stats := newTestDispatcher(t, fake)

	media := []domain.Media{{Kind: domain.MediaKindImage, URL: "https://pbs.twimg.com/a.jpg"}}

	if err := d.Dispatch(context.Background(), 1, media, ""); err == nil {
		t.Fatal("Dispatch() should propagate the album failure")
	}
	if _, media := stats.Snapshot(); media != 0 {
		t.Errorf("media counter = %d, want 0 after failure", media)
	}
}

func TestDispatch_VideoDirectSuccessCounts(t *testing.T) {
	fake := &fakeMessenger{}
	d, stats := newTestDispatcher(t, fake)

	media := []domain.Media{{Kind: domain.MediaKindVideo, URL: "https://video.twimg.com/v.mp4"}}

	if err := d.Dispatch(context.Background(), 1, media, ""); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}

	if len(fake.urlSends) != 1 {
		t.Errorf("got %d direct sends, want 1", len(fake.urlSends))
	}
	if _, media := stats.Snapshot(); media != 1 {
		t.Errorf("media counter = %d, want 1", media)
	}
}

func TestDispatch_FailedVideoDoesNotCount(t *testing.T) {
	// Direct send rejected and the fallback fetch hits an unreachable
	// URL, so the whole video fails.
	fake := &fakeMessenger{failURLSend: errors.New("wrong file identifier")}
	d, stats := newTestDispatcher(t, fake)

	media := []domain.Media{{Kind: domain.MediaKindVideo, URL: "http://127.0.0.1:1/nope.mp4"}}

	if err := d.Dispatch(context.Background(), 1, media, ""); err != nil {
		t.Fatalf("a failed video must not abort the dispatch: %v", err)
	}
	if _, media := stats.Snapshot(); media != 0 {
		t.Errorf("media counter = %d, want 0", media)
	}
}
