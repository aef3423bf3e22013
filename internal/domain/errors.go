package domain

import "errors"

var (
	// ErrRecipeNotFound is returned when no recipe exists for the requested id
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrExternalAPIFailure is returned when the external recipes API request fails
	ErrExternalAPIFailure = errors.New("external recipes API request failed")

	// ErrMalformedUpstream is returned when the upstream payload cannot be
	// mapped into recipes (missing or non-numeric id, wrong shape)
	ErrMalformedUpstream = errors.New("malformed upstream recipe data")
)
