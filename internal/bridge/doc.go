// Package bridge is the local-network control core: it discovers Govee
// LAN-API lights, queries their state and sends them commands over one shared
// UDP socket.
//
// # Lifecycle
//
// A Bridge is constructed explicitly with New and passed to whoever needs it.
// The socket is bound on the first operation (lazily, exactly once even under
// concurrent first use) and released by Close. Close fails every in-flight
// request and discovery window with a cancellation error.
//
// # Correlation
//
// Requests and responses carry no correlation id. A request waits for the
// first frame whose tag matches the expected response tag and whose source IP
// matches the device it was sent to. Waiters are registered before the
// request is sent and removed on timeout or cancellation, so late replies are
// discarded instead of leaking into later requests. Frames nobody waits for
// go to active discovery windows; everything else is dropped.
//
// # Errors
//
// Every operation returns *Error. Use IsTimeout, IsSendError, IsEncodingError,
// IsBindError, IsCancelled and IsMalformed, or errors.Is against ErrTimeout
// and ErrCancelled. GetShortErrorMessage and GetTroubleshootingHint turn an
// error into text for people.
package bridge
