package patience

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Listener is the test-harness side of the rendezvous. It owns one bound,
// passively listening TCP endpoint on 127.0.0.1 with an OS-assigned port.
//
// A Listener supports a single rendezvous: create it, communicate Port to
// the child process, call Wait once, then Close. When several Notify calls
// race against one Wait, the first accepted connection wins and the rest are
// undefined (accepted and ignored, or pending until Close).
type Listener struct {
	ln   *net.TCPListener
	port uint16
}

// New binds a loopback TCP endpoint on an ephemeral port and puts it into
// listening mode. The returned Listener must be closed by the caller.
func New() (*Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBind, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("%w: unexpected listener type %T", ErrBind, ln)
	}
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok || addr.Port <= 0 || addr.Port > 65535 {
		_ = ln.Close()
		return nil, fmt.Errorf("%w: cannot determine bound port from %v", ErrAddress, ln.Addr())
	}
	return &Listener{ln: tcpLn, port: uint16(addr.Port)}, nil
}

// Port returns the OS-assigned rendezvous port. It is stable for the
// lifetime of the Listener; this exact value must reach the child process,
// no renegotiation happens later.
func (l *Listener) Port() uint16 {
	return l.port
}

// Wait blocks until a connection arrives on the rendezvous port or timeout
// elapses, whichever comes first. It consumes exactly one connection and
// returns how long it waited; on deadline it returns an error wrapping
// ErrTimedOut whose message states the configured timeout.
//
// The deadline is enforced natively by the socket, not by a poll loop, so
// total blocking time is bounded tightly by timeout.
func (l *Listener) Wait(timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	deadline := start.Add(timeout)
	if timeout <= 0 {
		// Still honor a connection that is already pending at call time.
		deadline = start.Add(time.Millisecond)
	}
	if err := l.ln.SetDeadline(deadline); err != nil {
		return 0, fmt.Errorf("patience: arm deadline: %w", err)
	}
	conn, err := l.ln.Accept()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return time.Since(start), fmt.Errorf("%w: no readiness signal within %v", ErrTimedOut, timeout)
		}
		return time.Since(start), fmt.Errorf("patience: accept: %w", err)
	}
	drain(conn)
	_ = conn.Close()
	return time.Since(start), nil
}

// Close releases the rendezvous endpoint. Safe to defer regardless of
// whether Wait succeeded, timed out, or was never called.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// drain reads whatever marker the signaler may have sent so the connection
// closes cleanly. The payload is informational only and never interpreted.
func drain(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _ = io.Copy(io.Discard, io.LimitReader(conn, 64))
}
