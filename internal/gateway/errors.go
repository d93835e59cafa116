package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

// ErrorKind classifies tracker API failures for retry handling.
type ErrorKind int

const (
	// Transient covers server-side and network failures worth retrying.
	Transient ErrorKind = iota
	// RateLimited means the API refused the call due to rate limiting.
	RateLimited
	// Unauthorized means the token was rejected. Not retryable.
	Unauthorized
	// NotFound means the issue or resource does not exist. Not retryable.
	NotFound
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate-limited"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not-found"
	default:
		return "transient"
	}
}

// TrackerError wraps an API failure with its retry classification.
type TrackerError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *TrackerError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TrackerError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying with backoff.
func (e *TrackerError) Retryable() bool {
	return e.Kind == RateLimited || e.Kind == Transient
}

// IsUnauthorized reports whether err is an Unauthorized tracker failure.
func IsUnauthorized(err error) bool {
	var te *TrackerError
	return errors.As(err, &te) && te.Kind == Unauthorized
}

// classify maps a go-github error to the tracker error taxonomy.
func classify(op string, err error) *TrackerError {
	kind := Transient

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		kind = RateLimited
	case errors.As(err, &respErr):
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = Unauthorized
		case http.StatusNotFound, http.StatusGone:
			kind = NotFound
		case http.StatusTooManyRequests:
			kind = RateLimited
		}
	}

	return &TrackerError{Kind: kind, Op: op, Err: err}
}
