package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrFetchFailed is returned when the streamed download of a video
	// body fails. Terminal for that video.
	ErrFetchFailed = errors.New("video fetch failed")

	// ErrURLExpired is returned when a media URL answers 401/403.
	ErrURLExpired = errors.New("media URL expired or inaccessible")

	// ErrRateLimited is returned when a media host answers 429.
	ErrRateLimited = errors.New("rate limited by media host")
)

// LookupError means the lookup service could not resolve a post.
// Reason is human-readable and is shown to the requester verbatim.
type LookupError struct {
	Reason string
	Err    error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("lookup: %s", e.Reason)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError builds a LookupError with an optional underlying cause.
func NewLookupError(reason string, err error) *LookupError {
	return &LookupError{Reason: reason, Err: err}
}
