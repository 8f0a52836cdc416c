package patience

import (
	"fmt"
	"net"
	"strconv"
)

// Notify signals a Listener on the loopback interface that the calling
// process is ready. Establishing the connection is the signal; a short
// marker is written afterwards for log clarity but no counterpart depends
// on it.
//
// This is a single attempt with no retry. Callers should invoke it only
// once their own readiness condition is actually true; failing to notify
// leaves the test waiting until its timeout, which is usually preferable to
// crashing the application over a lost signal.
func Notify(port uint16) error {
	if port == 0 {
		return fmt.Errorf("%w: port 0 is not a rendezvous port", ErrConnect)
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrConnect, addr, err)
	}
	// The handshake already delivered the signal; marker delivery is
	// best effort.
	_, _ = conn.Write(readyMarker)
	return conn.Close()
}
