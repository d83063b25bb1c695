package domain

import "errors"

var (
	// ErrRuntimeUnavailable is returned when the local model runtime cannot be reached
	ErrRuntimeUnavailable = errors.New("model runtime unavailable")

	// ErrModelNotReady is returned when the runtime is reachable but the model is still downloading
	ErrModelNotReady = errors.New("model not ready")

	// ErrImageFetch is returned when an image asset cannot be fetched or decoded
	ErrImageFetch = errors.New("image fetch failed")

	// ErrRelayFailure is returned when a relay call yields a malformed or absent response
	ErrRelayFailure = errors.New("relay request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidFilterState is returned when a filter state update fails validation
	ErrInvalidFilterState = errors.New("invalid filter state")

	// ErrWardrobeUnavailable is returned when the wardrobe store is not configured
	ErrWardrobeUnavailable = errors.New("wardrobe store unavailable")
)
