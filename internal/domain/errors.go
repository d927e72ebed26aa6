package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrMissingCredentials indicates the account number or API key is not configured.
	ErrMissingCredentials = errors.New("S&S Activewear credentials not configured")
	// ErrInvalidArgument indicates a caller supplied an unusable argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized indicates upstream rejected the credentials (401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the account may not use the endpoint (403).
	ErrForbidden = errors.New("forbidden")
	// ErrNetworkUnreachable indicates no response was received from upstream.
	ErrNetworkUnreachable = errors.New("no response from S&S API")
	// ErrInvalidResponseShape indicates a payload that is neither null, an object nor an array of objects.
	ErrInvalidResponseShape = errors.New("invalid response shape")
)

// UpstreamError is a non-success status other than 401, 403 and 404.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("S&S API error: %d - %s", e.Status, e.Message)
}

// ReportedErrors carries the messages of an upstream `errors` array.
type ReportedErrors struct {
	Messages []string
}

func (e *ReportedErrors) Error() string {
	return strings.Join(e.Messages, ", ")
}

// OperationError wraps a failure with the caller-facing operation name.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "Failed to " + e.Op + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Hint returns a short suggestion for the caller, or "" when none applies.
func Hint(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "check the SKU, GTIN, or Style ID"
	case errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrUnauthorized):
		return "verify SS_ACCOUNT_NUMBER and SS_API_KEY"
	case errors.Is(err, ErrForbidden):
		return "the account is not permitted to use this endpoint"
	case errors.Is(err, ErrNetworkUnreachable):
		return "check your internet connection"
	case errors.Is(err, ErrInvalidArgument):
		return "check the request arguments"
	case errors.As(err, &upstream) && upstream.Status >= 500:
		return "the S&S API is having trouble, try again later"
	}
	return ""
}
