package posefeed

import (
	"bytes"
	"io"
	"time"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/monitoring"
)

// MockSource implements Sourcer for dev mode and tests.
type MockSource struct {
	io.Reader
	closer io.Closer
}

// Close closes the underlying pipe.
func (m *MockSource) Close() error {
	return m.closer.Close()
}

// NewMockFeed creates a Feed that replays the given fixture lines forever at
// the given interval, cycling back to the first line after the last. Used in
// dev mode to run the full pipeline without pose hardware.
func NewMockFeed(fixture []byte, interval time.Duration) *Feed[*MockSource] {
	lines := bytes.Split(bytes.TrimSpace(fixture), []byte("\n"))
	r, w := io.Pipe()

	go func() {
		defer w.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for range ticker.C {
			line := make([]byte, 0, len(lines[i%len(lines)])+1)
			line = append(line, lines[i%len(lines)]...)
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				// reader side closed; stop replaying
				monitoring.Logf("mock pose feed stopped: %v", err)
				return
			}
			i++
		}
	}()

	return NewFeed(&MockSource{Reader: r, closer: r})
}
