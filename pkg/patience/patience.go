// Package patience synchronizes the startup of a process under test with the
// test that launched it, over a single loopback TCP rendezvous.
//
// The test side creates a Listener, hands its Port to the child process out
// of band (environment variable, argument, file), and blocks in Wait. The
// child calls Notify with that port once its own initialization is complete;
// the connection establishment is the readiness signal and Wait returns.
package patience

import "errors"

// Error kinds. Returned errors wrap one of these together with the
// underlying cause, so callers can match the kind with errors.Is and still
// unwrap the OS-level error.
var (
	// ErrBind means the Listener could not allocate a loopback endpoint.
	ErrBind = errors.New("patience: bind failed")

	// ErrAddress means the bound endpoint could not report its local port.
	ErrAddress = errors.New("patience: local address unavailable")

	// ErrConnect means Notify could not reach the target port.
	ErrConnect = errors.New("patience: connect failed")

	// ErrTimedOut is the non-exceptional outcome of Wait when no signal
	// arrived before the deadline.
	ErrTimedOut = errors.New("patience: timed out")
)

// readyMarker is written by Notify for the benefit of logs and packet
// captures. Counterparts never require it; the TCP handshake alone is the
// signal.
var readyMarker = []byte("done")
