package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// Error kinds surfaced by source adapters. Every *FetchError wraps exactly one.
var (
	ErrNetwork  = errors.New("network failure")
	ErrUpstream = errors.New("upstream error")
	ErrParse    = errors.New("parse failure")
)

var ErrUnauthorized = errors.New("unauthorized")

// FetchError describes a failed call to a post source.
type FetchError struct {
	Source string
	Kind   error
	// Status is the HTTP status for ErrUpstream, and the 2xx status for an
	// ErrParse on a response body. Zero otherwise.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Source, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func networkError(source string, err error) error {
	return &FetchError{Source: source, Kind: ErrNetwork, Err: err}
}

func parseError(source string, err error) error {
	return &FetchError{Source: source, Kind: ErrParse, Err: err}
}

// bodyError reports a 2xx response whose body could not be read as expected.
// The server accepted the request, so the failure is definitive.
func bodyError(source string, status int, err error) error {
	return &FetchError{Source: source, Kind: ErrParse, Status: status, Err: err}
}

func statusError(source string, status int) error {
	e := &FetchError{Source: source, Kind: ErrUpstream, Status: status}
	switch status {
	case http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	case http.StatusNotFound:
		e.Err = posts.ErrNotFound
	}
	return e
}

// isUnavailable reports whether err means the source could not give an
// answer (transport failure, server error, unreadable body), as opposed to a
// definitive answer such as 401, 404 or a 2xx whose body did not decode.
func isUnavailable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case errors.Is(fe.Kind, ErrUpstream):
		return fe.Status >= http.StatusInternalServerError || fe.Status < http.StatusBadRequest
	case errors.Is(fe.Kind, ErrParse):
		return fe.Status < 200 || fe.Status >= 300
	}
	return true
}
