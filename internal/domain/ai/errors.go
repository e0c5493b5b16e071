package ai

import "errors"

// Failure kinds surfaced by the AI path. Providers wrap one of these with %w.
var (
	// ErrInvalidResponseFormat: the model returned something that is not JSON.
	ErrInvalidResponseFormat = errors.New("ai response is not valid json")
	// ErrSchemaValidation: JSON parsed but failed the analysis schema after sanitizing.
	ErrSchemaValidation = errors.New("ai response failed schema validation")
	// ErrRateLimited indicates the provider returned a quota/limit error (HTTP 429).
	ErrRateLimited = errors.New("ai rate limited")
	// ErrServiceAuth: provider rejected our credentials (401/403).
	ErrServiceAuth = errors.New("ai service authentication failed")
	// ErrServiceUnavailable covers network, timeout, cancellation and other provider errors.
	ErrServiceUnavailable = errors.New("ai service unavailable")
)

// Kind is a stable, loggable name for an AI failure.
type Kind string

const (
	KindNone                  Kind = ""
	KindInvalidResponseFormat Kind = "invalid_response_format"
	KindSchemaValidation      Kind = "schema_validation"
	KindRateLimited           Kind = "rate_limited"
	KindServiceAuth           Kind = "service_auth"
	KindServiceUnavailable    Kind = "service_unavailable"
	KindUnknown               Kind = "unknown"
)

// KindOf classifies err. nil yields KindNone; anything outside the taxonomy
// yields KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidResponseFormat):
		return KindInvalidResponseFormat
	case errors.Is(err, ErrSchemaValidation):
		return KindSchemaValidation
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrServiceAuth):
		return KindServiceAuth
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	}
	return KindUnknown
}

// Retryable reports whether a caller may reasonably try again later.
// Nothing in this module retries on its own.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindServiceUnavailable:
		return true
	}
	return false
}
