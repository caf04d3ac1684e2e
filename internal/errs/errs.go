package errs

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Kind categorizes request-surface errors for status mapping.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed (HTTP 400).
	InvalidInput
	// Unreachable indicates the audited page could not be reached (HTTP 502).
	Unreachable
	// Timeout indicates the request ran out of time (HTTP 504).
	Timeout
)

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Invalid builds an InvalidInput error.
func Invalid(format string, args ...any) *AppError {
	return &AppError{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// HTTPStatus maps an error to the status code served for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput:
		return http.StatusBadRequest
	case Unreachable:
		return http.StatusBadGateway
	case Timeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// ValidateTargetURL checks that raw is an absolute http(s) URL with a host.
func ValidateTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Invalid("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &AppError{Kind: InvalidInput, Message: "invalid url", Cause: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Invalid("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", Invalid("url has no host")
	}
	return raw, nil
}
