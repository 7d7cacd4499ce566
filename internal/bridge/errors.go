package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/muurk/lightbridge/internal/protocol"
	"github.com/muurk/lightbridge/internal/transport"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeBind indicates the local UDP endpoint could not be acquired
	ErrTypeBind ErrorType = iota
	// ErrTypeSend indicates the OS refused or failed to route a datagram
	ErrTypeSend
	// ErrTypeResolve indicates the device host name could not be resolved
	ErrTypeResolve
	// ErrTypeEncoding indicates an outgoing payload could not be serialized
	ErrTypeEncoding
	// ErrTypeMalformed indicates a matched response could not be interpreted
	ErrTypeMalformed
	// ErrTypeTimeout indicates no matching response arrived before the deadline
	ErrTypeTimeout
	// ErrTypeCancelled indicates the caller or bridge shutdown abandoned the operation
	ErrTypeCancelled
)

// SendSubtype provides more specific send error classification
type SendSubtype int

const (
	SendErrorGeneral SendSubtype = iota
	SendErrorHostUnreachable
	SendErrorNetworkUnreachable
	SendErrorPermission
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeBind:
		return "Bind Error"
	case ErrTypeSend:
		return "Send Error"
	case ErrTypeResolve:
		return "Resolve Error"
	case ErrTypeEncoding:
		return "Encoding Error"
	case ErrTypeMalformed:
		return "Malformed Response"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every bridge operation.
type Error struct {
	Type    ErrorType   // Category of error
	Message string      // Human-readable error message
	Device  string      // Device address (for context)
	Subtype SendSubtype // More specific send error type
	Err     error       // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bridge error of the same type, so
// errors.Is(err, bridge.ErrTimeout) matches any timeout.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// Sentinels for errors.Is comparisons.
var (
	ErrTimeout   = &Error{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCancelled = &Error{Type: ErrTypeCancelled, Message: "operation cancelled"}
)

func newBindError(err error) *Error {
	addr := ""
	var bindErr *transport.BindError
	if errors.As(err, &bindErr) {
		addr = bindErr.Addr
	}
	return &Error{
		Type:    ErrTypeBind,
		Message: fmt.Sprintf("cannot bind local UDP endpoint %s", addr),
		Err:     err,
	}
}

func newResolveError(host string, err error) *Error {
	msg := fmt.Sprintf("cannot resolve device host %q", host)
	if host == "" {
		msg = "missing device host"
	}
	return &Error{
		Type:    ErrTypeResolve,
		Message: msg,
		Device:  host,
		Err:     err,
	}
}

func newEncodingError(err error) *Error {
	return &Error{
		Type:    ErrTypeEncoding,
		Message: "payload cannot be encoded",
		Err:     err,
	}
}

func newMalformedError(device string, err error) *Error {
	return &Error{
		Type:    ErrTypeMalformed,
		Message: "device response could not be interpreted",
		Device:  device,
		Err:     err,
	}
}

func newTimeoutError(device, tag string, timeout time.Duration) *Error {
	return &Error{
		Type:    ErrTypeTimeout,
		Message: fmt.Sprintf("no %s response within %s", tag, timeout),
		Device:  device,
	}
}

func newCancelledError(device, reason string, err error) *Error {
	return &Error{
		Type:    ErrTypeCancelled,
		Message: reason,
		Device:  device,
		Err:     err,
	}
}

// ClassifySendError wraps a transport send failure with a more specific subtype.
func ClassifySendError(err error, device string) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newCancelledError(device, "send cancelled", err)
	}

	e := &Error{
		Type:    ErrTypeSend,
		Message: "datagram could not be sent",
		Device:  device,
		Err:     err,
		Subtype: SendErrorGeneral,
	}

	switch {
	case errors.Is(err, syscall.EHOSTUNREACH):
		e.Message = "Host unreachable"
		e.Subtype = SendErrorHostUnreachable
	case errors.Is(err, syscall.ENETUNREACH):
		e.Message = "Network unreachable"
		e.Subtype = SendErrorNetworkUnreachable
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		e.Message = "Send not permitted"
		e.Subtype = SendErrorPermission
	case errors.Is(err, net.ErrClosed):
		e.Message = "Socket closed"
	case os.IsTimeout(err):
		e.Message = "Send timed out"
	}
	return e
}

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsBindError checks if an error is a bind error
func IsBindError(err error) bool { return isType(err, ErrTypeBind) }

// IsSendError checks if an error is a send or resolve error
func IsSendError(err error) bool {
	return isType(err, ErrTypeSend) || isType(err, ErrTypeResolve)
}

// IsEncodingError checks if an error is an encoding error
func IsEncodingError(err error) bool { return isType(err, ErrTypeEncoding) }

// IsMalformed checks if an error is a malformed response error
func IsMalformed(err error) bool { return isType(err, ErrTypeMalformed) }

// IsTimeout checks if an error is a request timeout
func IsTimeout(err error) bool { return isType(err, ErrTypeTimeout) }

// IsCancelled checks if an error is a cancellation
func IsCancelled(err error) bool { return isType(err, ErrTypeCancelled) }

// wrapEncoding converts codec failures into bridge errors.
func wrapEncoding(err error) error {
	if errors.Is(err, protocol.ErrEncoding) {
		return newEncodingError(err)
	}
	return err
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeBind:
		return "Cannot open UDP port - is another bridge running?"
	case ErrTypeSend:
		switch e.Subtype {
		case SendErrorHostUnreachable:
			return "Light unreachable - check network connection"
		case SendErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		case SendErrorPermission:
			return "Sending not permitted - check firewall"
		default:
			return "Failed to send to light"
		}
	case ErrTypeResolve:
		return "Cannot resolve light address"
	case ErrTypeEncoding:
		return "Invalid command payload"
	case ErrTypeMalformed:
		return "Light sent an unreadable response"
	case ErrTypeTimeout:
		return "Light not responding (timeout)"
	case ErrTypeCancelled:
		return "Operation cancelled"
	default:
		return e.Message
	}
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeBind:
		return strings.Join([]string{
			"The bridge could not open its UDP port.",
			"Troubleshooting:",
			"  • Stop other apps that control Govee lights locally (they use UDP 4002)",
			"  • Use --listen to pick a different local address",
		}, "\n")

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The light did not answer in time.",
			"Troubleshooting:",
			"  • Enable \"LAN Control\" for the light in the Govee Home app",
			"  • Check that the light is powered on and on the same network",
			"  • Allow inbound UDP port 4002 through your firewall",
			"  • Try increasing the timeout",
		}, "\n")

	case ErrTypeSend, ErrTypeResolve:
		return strings.Join([]string{
			"The request could not leave this computer.",
			"Troubleshooting:",
			"  • Verify the light's IP address is correct",
			"  • Check that you are connected to the home WiFi network",
			"  • Run discovery to find the current address",
		}, "\n")

	case ErrTypeEncoding:
		return "The command body must be a JSON object shaped like {\"msg\":{\"cmd\":...,\"data\":{...}}}."

	case ErrTypeMalformed:
		return "The light answered with data this bridge does not understand. Check the light's firmware version."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
