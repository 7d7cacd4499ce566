package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/muurk/lightbridge/internal/protocol"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeBind, "Bind Error"},
		{ErrTypeSend, "Send Error"},
		{ErrTypeResolve, "Resolve Error"},
		{ErrTypeEncoding, "Encoding Error"},
		{ErrTypeMalformed, "Malformed Response"},
		{ErrTypeTimeout, "Timeout"},
		{ErrTypeCancelled, "Cancelled"},
		{ErrorType(99), "ErrorType(99)"},
	}

	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.errType, got, tt.want)
		}
	}
}

func TestErrorPredicates(t *testing.T) {
	timeout := newTimeoutError("10.0.0.1:4003", protocol.CmdStatus, time.Second)
	wrapped := fmt.Errorf("status: %w", timeout)

	if !IsTimeout(wrapped) {
		t.Error("IsTimeout should see through wrapping")
	}
	if !errors.Is(wrapped, ErrTimeout) {
		t.Error("errors.Is(wrapped, ErrTimeout) should be true")
	}
	if errors.Is(wrapped, ErrCancelled) {
		t.Error("timeout should not match ErrCancelled")
	}
	if IsSendError(timeout) || IsEncodingError(timeout) || IsBindError(timeout) {
		t.Error("timeout matched another predicate")
	}

	cancelled := newCancelledError("", "request cancelled", context.Canceled)
	if !IsCancelled(cancelled) || !errors.Is(cancelled, context.Canceled) {
		t.Error("cancelled error should match IsCancelled and unwrap to context.Canceled")
	}

	enc := wrapEncoding(fmt.Errorf("%w: bad", protocol.ErrEncoding))
	if !IsEncodingError(enc) {
		t.Errorf("wrapEncoding() = %v, want encoding error", enc)
	}
	plain := errors.New("plain")
	if wrapEncoding(plain) != plain {
		t.Error("wrapEncoding should pass through unrelated errors")
	}
}

func TestErrorMessage(t *testing.T) {
	err := newTimeoutError("10.0.0.1:4003", protocol.CmdStatus, 2*time.Second)
	if got := err.Error(); got != "Timeout: no devStatus response within 2s" {
		t.Errorf("Error() = %q", got)
	}

	withCause := newResolveError("lamp.local", errors.New("no such host"))
	if !strings.Contains(withCause.Error(), "caused by: no such host") {
		t.Errorf("Error() = %q, want cause included", withCause.Error())
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", newTimeoutError("", "devStatus", time.Second), "Light not responding (timeout)"},
		{"bind", newBindError(errors.New("in use")), "Cannot open UDP port - is another bridge running?"},
		{"encoding", newEncodingError(errors.New("x")), "Invalid command payload"},
		{"resolve", newResolveError("", nil), "Cannot resolve light address"},
		{"cancelled", newCancelledError("", "bridge closed", nil), "Operation cancelled"},
		{"malformed", newMalformedError("", errors.New("x")), "Light sent an unreadable response"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetShortErrorMessage(tt.err); got != tt.want {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	hint := GetTroubleshootingHint(newTimeoutError("", "devStatus", time.Second))
	if !strings.Contains(hint, "LAN Control") {
		t.Errorf("timeout hint should mention LAN Control, got %q", hint)
	}

	hint = GetTroubleshootingHint(newBindError(errors.New("in use")))
	if !strings.Contains(hint, "4002") {
		t.Errorf("bind hint should mention port 4002, got %q", hint)
	}

	if got := GetTroubleshootingHint(errors.New("x")); got != "An unexpected error occurred. Please try again." {
		t.Errorf("GetTroubleshootingHint(plain) = %q", got)
	}
}
