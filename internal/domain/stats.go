package domain

import "sync"

// Stats holds the process-wide delivery counters. Both values only ever
// increase, except through Reset. Safe for concurrent use; multiple
// message handlers increment it at once.
type Stats struct {
	mu              sync.Mutex
	messagesHandled int64
	mediaDownloaded int64
}

// NewStats creates a Stats record seeded with persisted values.
func NewStats(messagesHandled, mediaDownloaded int64) *Stats {
	return &Stats{
		messagesHandled: messagesHandled,
		mediaDownloaded: mediaDownloaded,
	}
}

// AddMessages increments the messages-handled counter.
func (s *Stats) AddMessages(n int64) {
	s.mu.Lock()
	s.messagesHandled += n
	s.mu.Unlock()
}

// AddMedia increments the media-downloaded counter.
func (s *Stats) AddMedia(n int64) {
	s.mu.Lock()
	s.mediaDownloaded += n
	s.mu.Unlock()
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() (messagesHandled, mediaDownloaded int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesHandled, s.mediaDownloaded
}

// Reset zeroes both counters.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.messagesHandled = 0
	s.mediaDownloaded = 0
	s.mu.Unlock()
}
