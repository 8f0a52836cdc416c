// Package report renders the result of one rendezvous run for humans or CI.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

// Outcome labels for a rendezvous run.
const (
	OutcomeSignaled = "signaled"
	OutcomeTimedOut = "timed_out"
)

// Report summarizes one `patience run`.
type Report struct {
	Outcome   string `json:"outcome"`
	Port      uint16 `json:"port"`
	TimeoutMS int64  `json:"timeout_ms"`
	WaitedMS  int64  `json:"waited_ms"`

	timeout time.Duration
	waited  time.Duration
}

// New builds a Report from the run parameters.
func New(outcome string, port uint16, timeout, waited time.Duration) Report {
	return Report{
		Outcome:   outcome,
		Port:      port,
		TimeoutMS: timeout.Milliseconds(),
		WaitedMS:  waited.Milliseconds(),
		timeout:   timeout,
		waited:    waited,
	}
}

// WriteJSON emits the report as a single JSON line.
func (r Report) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// WriteText emits the report as one human-readable line.
func (r Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "outcome=%s port=%d timeout=%v waited=%v\n",
		r.Outcome, r.Port, r.timeout, r.waited.Round(time.Millisecond))
	return err
}
