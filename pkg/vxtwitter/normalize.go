package vxtwitter

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/iconidentify/xrelay/internal/domain"
)

var urlResolutionPattern = regexp.MustCompile(`(\d{3,4})x(\d{3,4})`)

// mediaItem is one entry of the media_extended list. The service is not
// consistent about where it puts sizes, thumbnails, and ids, so every
// known field name is declared here and resolved by an ordered fallback
// chain in normalize.
type mediaItem struct {
	Type string `json:"type"`
	URL  string `json:"url"`

	Size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"size"`
	Width  int `json:"width"`
	Height int `json:"height"`

	ThumbnailURL    string `json:"thumbnail_url"`
	Thumbnail       string `json:"thumbnail"`
	PreviewImageURL string `json:"preview_image_url"`
	Poster          string `json:"poster"`

	IDStr string          `json:"id_str"`
	ID    json.RawMessage `json:"id"`
}

// normalize maps a raw media item onto the fixed descriptor shape.
// Returns false for entries of unknown type.
func (m mediaItem) normalize() (domain.Media, bool) {
	var kind domain.MediaKind
	switch m.Type {
	case "image":
		kind = domain.MediaKindImage
	case "gif":
		kind = domain.MediaKindAnimation
	case "video":
		kind = domain.MediaKindVideo
	default:
		return domain.Media{}, false
	}

	media := domain.Media{
		Kind: kind,
		URL:  m.URL,
	}

	if kind != domain.MediaKindVideo {
		return media, true
	}

	media.Width, media.Height = m.resolution()
	media.ThumbnailURL = firstNonEmpty(m.ThumbnailURL, m.Thumbnail, m.PreviewImageURL, m.Poster)
	media.ResourceID = m.resourceID()

	return media, true
}

// resolution resolves width/height: nested size fields, then top-level
// fields, then a WxH token embedded in the URL. Zero means unknown.
func (m mediaItem) resolution() (int, int) {
	width := m.Size.Width
	height := m.Size.Height

	if width == 0 {
		width = m.Width
	}
	if height == 0 {
		height = m.Height
	}

	if width == 0 || height == 0 {
		uw, uh := resolutionFromURL(m.URL)
		if width == 0 {
			width = uw
		}
		if height == 0 {
			height = uh
		}
	}

	return width, height
}

// resourceID picks an identifier for naming transient files: id_str,
// then id (number or string). "" means the caller must generate one.
func (m mediaItem) resourceID() string {
	if m.IDStr != "" {
		return m.IDStr
	}
	if len(m.ID) == 0 {
		return ""
	}

	id := strings.Trim(string(m.ID), `"`)
	if id == "null" {
		return ""
	}
	return id
}

// resolutionFromURL extracts a <width>x<height> token (3-4 digits each)
// embedded in a media URL, e.g. ".../vid/1280x720/xxx.mp4".
func resolutionFromURL(url string) (int, int) {
	m := urlResolutionPattern.FindStringSubmatch(url)
	if m == nil {
		return 0, 0
	}

	w, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0
	}
	h, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0
	}

	return w, h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
