// Package extract parses free-form message text for supported post URLs.
// All functions are pure.
package extract

import (
	"regexp"
	"strings"
)

var (
	statusPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter\.com|x\.com)/[^/\s]+/status/(\d+)`)
	handlePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter\.com|x\.com)/([^/\s]{1,15})/`)
)

// PostIDs returns the status ids of every supported post URL in text,
// deduplicated, in first-occurrence order. Empty slice when no match.
func PostIDs(text string) []string {
	matches := statusPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// Tag returns the first post author handle in text as a "#" hashtag,
// or "" when text contains no supported URL.
func Tag(text string) string {
	m := handlePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return "#" + m[1]
}

// LooksLikePostLink reports whether text mentions a supported host at
// all. Used to decide if a "no supported link" notice is warranted.
func LooksLikePostLink(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "twitter.com") || strings.Contains(lower, "x.com")
}
