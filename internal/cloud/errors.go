package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ErrorType classifies a failed cloud call.
type ErrorType int

const (
	ErrTypeNetwork     ErrorType = iota // API unreachable
	ErrTypeTimeout                      // no answer within the client timeout
	ErrTypeAuth                         // 401/403: key rejected
	ErrTypeRateLimited                  // 429
	ErrTypeHTTP                         // any other non-2xx status
	ErrTypeParse                        // body was not the expected JSON
	ErrTypeValidation                   // missing key, device or model
)

var typeNames = map[ErrorType]string{
	ErrTypeNetwork:     "network",
	ErrTypeTimeout:     "timeout",
	ErrTypeAuth:        "auth",
	ErrTypeRateLimited: "rate limited",
	ErrTypeHTTP:        "http",
	ErrTypeParse:       "parse",
	ErrTypeValidation:  "validation",
}

func (et ErrorType) String() string {
	if n, ok := typeNames[et]; ok {
		return n
	}
	return "ErrorType(" + strconv.Itoa(int(et)) + ")"
}

// APIError is returned by every Client method. StatusCode and Body are set
// for HTTP status failures only.
type APIError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Body       string // first 200 bytes of the response
	Err        error
}

func (e *APIError) Error() string {
	msg := "govee cloud " + e.Type.String() + " error: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

func newNetworkError(message string, err error) *APIError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &APIError{Type: ErrTypeTimeout, Message: message, Err: urlErr.Err}
		}
		err = urlErr.Err
	}
	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Type: ErrTypeTimeout, Message: message, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		message = fmt.Sprintf("%s: cannot resolve %s", message, dnsErr.Name)
	}
	return &APIError{Type: ErrTypeNetwork, Message: message, Err: err}
}

func newStatusError(status int, body []byte) *APIError {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}

	e := &APIError{Type: ErrTypeHTTP, Message: "status " + strconv.Itoa(status), StatusCode: status, Body: excerpt}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Type, e.Message = ErrTypeAuth, "API key rejected"
	case http.StatusTooManyRequests:
		e.Type, e.Message = ErrTypeRateLimited, "rate limit exceeded"
	}
	return e
}

func newParseError(message string, err error) *APIError {
	return &APIError{Type: ErrTypeParse, Message: message, Err: err}
}

func newValidationError(message string) *APIError {
	return &APIError{Type: ErrTypeValidation, Message: message}
}

func isType(err error, t ErrorType) bool {
	var e *APIError
	return errors.As(err, &e) && e.Type == t
}

func IsAuthError(err error) bool { return isType(err, ErrTypeAuth) }

func IsRateLimited(err error) bool { return isType(err, ErrTypeRateLimited) }

// IsNetworkError reports network and timeout failures.
func IsNetworkError(err error) bool {
	return isType(err, ErrTypeNetwork) || isType(err, ErrTypeTimeout)
}

func IsValidationError(err error) bool { return isType(err, ErrTypeValidation) }

var shortMessages = map[ErrorType]string{
	ErrTypeNetwork:     "Cannot reach Govee cloud - check internet connection",
	ErrTypeTimeout:     "Govee cloud not responding (timeout)",
	ErrTypeAuth:        "API key rejected - check your Govee API key",
	ErrTypeRateLimited: "Govee cloud rate limit reached - try again later",
	ErrTypeParse:       "Failed to parse Govee cloud response",
}

// GetShortErrorMessage returns a one-line message for display.
func GetShortErrorMessage(err error) string {
	var e *APIError
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Type == ErrTypeHTTP {
		return fmt.Sprintf("Govee cloud error (HTTP %d)", e.StatusCode)
	}
	if m, ok := shortMessages[e.Type]; ok {
		return m
	}
	return e.Message
}
