// Package apperror defines the application's error taxonomy.
//
// ERROR SHAPE:
// Every failure the lookup flow can surface is an *AppError. It carries:
//   - Err:     a sentinel (ErrNotFound, ErrRateLimited, ...) so errors.Is works
//   - Kind:    an explicit discriminant the controller and handlers switch on
//   - Message: the text shown to the user in the error banner
//   - Network: true when the failure came from the transport or the server
//     (the banner prefixes these with "Network Error: ")
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("Validation Error")
	ErrRateLimited = errors.New("rate limited")
	ErrUpstream    = errors.New("upstream failure")
	ErrCorrupt     = errors.New("corrupt cache entry")
	ErrInternal    = errors.New("internal error")
)

// Kind identifies which branch of the lookup flow produced an error.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFoundCached
	KindNotFoundRemote
	KindRateLimited
	KindTransport
	KindCorrupt
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFoundCached:
		return "not_found_cached"
	case KindNotFoundRemote:
		return "not_found_remote"
	case KindRateLimited:
		return "rate_limited"
	case KindTransport:
		return "transport_or_server_error"
	case KindCorrupt:
		return "corrupt"
	default:
		return "internal"
	}
}

// User-facing messages.
const (
	MsgInvalidHandle = "Github username is not valid."
	MsgNotFound      = "Username not found"
	MsgRateLimited   = "Github API rate limit reached."

	networkPrefix = "Network Error: "
)

type AppError struct {
	Err     error  // actual error
	Kind    Kind   // discriminant
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Network bool   // failure originated in the transport or upstream server
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// BannerText is the text the error banner shows for this error.
func (e *AppError) BannerText() string {
	if e.Network {
		return networkPrefix + e.Message
	}
	return e.Message
}

// InvalidHandle reports a handle that fails the identifier grammar.
// It never reaches the network or the cache.
func InvalidHandle() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindInvalidInput,
		Message: MsgInvalidHandle,
		Field:   "handle",
	}
}

// NotFoundCached reports a negative result read back from the cache.
func NotFoundCached() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    KindNotFoundCached,
		Message: MsgNotFound,
	}
}

// NotFoundRemote reports a 404 from the API.
func NotFoundRemote() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    KindNotFoundRemote,
		Message: MsgNotFound,
	}
}

// RateLimited reports a 403 from the API.
func RateLimited() *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Kind:    KindRateLimited,
		Message: MsgRateLimited,
	}
}

// Transport reports any other failure between us and the API: a 4xx/5xx
// status (message is the status text) or a failed round trip.
func Transport(message string, cause error) *AppError {
	err := ErrUpstream
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, cause)
	}
	return &AppError{
		Err:     err,
		Kind:    KindTransport,
		Message: message,
		Network: true,
	}
}

// Corrupt reports a cache entry that could not be decoded.
func Corrupt(key string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrCorrupt, cause),
		Kind:    KindCorrupt,
		Message: fmt.Sprintf("cache entry %s is corrupt", key),
	}
}

// ValidationFailed reports a malformed request (bad JSON, missing field).
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindInvalidInput,
		Message: message,
		Field:   field,
	}
}

// Internal wraps an infrastructure failure that has no user-facing meaning.
func Internal(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Kind:    KindInternal,
		Message: message,
	}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
