package service

import (
	"context"
	"io"
	"sync"

	"github.com/iconidentify/xrelay/internal/telegram"
)

// fakeMessenger records every platform call and fails on demand.
type fakeMessenger struct {
	mu sync.Mutex

	albums     [][]telegram.PhotoItem
	animations []string
	urlSends   []string
	fileSends  []fileSend
	messages   []string
	edits      []string
	deletes    []int

	failAlbum     error
	failAnimation error
	failURLSend   error
	failFileSend  func(call int, hasThumb bool) error
	failMessage   error
	failDelete    error

	nextMessageID int
}

type fileSend struct {
	videoBytes []byte
	hasThumb   bool
	params     telegram.VideoParams
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMessage != nil {
		return 0, f.failMessage
	}
	f.messages = append(f.messages, text)
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *fakeMessenger) SendMessageHTML(ctx context.Context, chatID int64, text string) error {
	_, err := f.SendMessage(ctx, chatID, text)
	return err
}

func (f *fakeMessenger) SendPhotoAlbum(ctx context.Context, chatID int64, photos []telegram.PhotoItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAlbum != nil {
		return f.failAlbum
	}
	f.albums = append(f.albums, photos)
	return nil
}

func (f *fakeMessenger) SendAnimation(ctx context.Context, chatID int64, url, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAnimation != nil {
		return f.failAnimation
	}
	f.animations = append(f.animations, url)
	return nil
}

func (f *fakeMessenger) SendVideoURL(ctx context.Context, chatID int64, url string, params telegram.VideoParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failURLSend != nil {
		return f.failURLSend
	}
	f.urlSends = append(f.urlSends, url)
	return nil
}

func (f *fakeMessenger) SendVideoFile(ctx context.Context, chatID int64, video io.Reader, thumbnail io.Reader, params telegram.VideoParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.fileSends)
	hasThumb := thumbnail != nil
	if f.failFileSend != nil {
		if err := f.failFileSend(call, hasThumb); err != nil {
			f.fileSends = append(f.fileSends, fileSend{hasThumb: hasThumb, params: params})
			return err
		}
	}

	data, err := io.ReadAll(video)
	if err != nil {
		return err
	}
	f.fileSends = append(f.fileSends, fileSend{videoBytes: data, hasThumb: hasThumb, params: params})
	return nil
}

func (f *fakeMessenger) SendDocument(ctx context.Context, chatID int64, filename string, data io.Reader, caption string) error {
	return nil
}

func (f *fakeMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeMessenger) SetCommands(ctx context.Context, commands []telegram.Command) error {
	return nil
}

func (f *fakeMessenger) SetChatCommands(ctx context.Context, chatID int64, commands []telegram.Command) error {
	return nil
}
