package lod

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTier is returned for a tier the cache was not configured with.
	ErrUnknownTier = errors.New("lod: unknown tier")

	// ErrDisposed is returned for requests against a disposed cache and for
	// loads that were still pending when the cache was disposed.
	ErrDisposed = errors.New("lod: cache disposed")
)

// TransferError reports that the bytes of a tier could not be obtained, or
// that a decoded image could not be handed to the GPU.
type TransferError struct {
	Tier Tier
	URL  string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("lod: transfer tier %d from %s: %v", e.Tier, e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// DecodeError reports that fetched bytes were not a usable image.
type DecodeError struct {
	Tier Tier
	URL  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lod: decode tier %d from %s: %v", e.Tier, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
