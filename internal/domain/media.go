package domain

// MediaKind represents the type of a resolved media asset.
type MediaKind string

const (
	MediaKindImage     MediaKind = "image"
	MediaKindAnimation MediaKind = "animation"
	MediaKindVideo     MediaKind = "video"
)

// Media is one normalized asset resolved from a post. Instances are
// produced fresh per resolution call and never mutated afterwards.
type Media struct {
	Kind MediaKind
	URL  string

	// Video-only fields. Zero width/height means unknown and is omitted
	// from the send call rather than blocking delivery.
	Width        int
	Height       int
	ThumbnailURL string
	ResourceID   string
}

// Outcome classifies how a single video delivery ended.
type Outcome string

const (
	// OutcomeDirect means Telegram accepted the remote URL as-is.
	OutcomeDirect Outcome = "delivered-direct"

	// OutcomeFallback means the video was downloaded locally and re-uploaded.
	OutcomeFallback Outcome = "delivered-fallback"

	OutcomeFailed Outcome = "failed"
)

// Delivered reports whether the outcome counts as a successful delivery.
func (o Outcome) Delivered() bool {
	return o == OutcomeDirect || o == OutcomeFallback
}
