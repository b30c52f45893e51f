// Package posefeed provides an abstraction over the pose-model transport with
// the ability for multiple clients to subscribe to keypoint frames from a
// single source. The external pose estimator emits one frame per line: a JSON
// array of 17 [y, x, confidence] triples. The feed fans raw lines out to
// subscribers; parsing and validation happen at the consumer boundary so a
// malformed line can be counted and discarded without disturbing the mux.
package posefeed

import (
	"bufio"
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"io"
	"sync"
)

// Sourcer is the minimal interface a pose transport must provide. The
// abstraction enables unit testing without real hardware.
type Sourcer interface {
	io.Reader
	io.Closer
}

// Feed is a generic line multiplexer that allows multiple clients to
// subscribe to frames from a single pose source.
type Feed[T Sourcer] struct {
	source       T
	subscribers  map[string]chan string
	subscriberMu sync.Mutex
	closing      bool
	closingMu    sync.Mutex
}

// FeedInterface defines the interface for the Feed type.
type FeedInterface interface {
	// Subscribe creates a new channel for receiving frame lines from the
	// source. The returned ID identifies the channel when unsubscribing.
	Subscribe() (string, chan string)
	// Unsubscribe removes a channel from the list of subscribers.
	Unsubscribe(string)
	// Monitor reads lines from the source and fans them out to
	// subscribers until the context is cancelled or the source ends.
	Monitor(context.Context) error
	// Close closes all subscribed channels and the underlying source.
	Close() error
}

// NewFeed creates a Feed backed by the given source.
func NewFeed[T Sourcer](source T) *Feed[T] {
	return &Feed[T]{
		source:      source,
		subscribers: make(map[string]chan string),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded value)
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

func (f *Feed[T]) Subscribe() (string, chan string) {
	id := randomID()
	ch := make(chan string)
	f.subscriberMu.Lock()
	defer f.subscriberMu.Unlock()
	f.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber from the feed.
func (f *Feed[T]) Unsubscribe(id string) {
	f.subscriberMu.Lock()
	defer f.subscriberMu.Unlock()
	if ch, ok := f.subscribers[id]; ok {
		close(ch)
		delete(f.subscribers, id)
	}
}

// Monitor reads frame lines from the source and sends them to subscribers.
func (f *Feed[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(f.source)
	// A frame line is ~17 triples of floats; 64KiB default is plenty but a
	// burst of concatenated frames from a reconnecting source is not.
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// Read in a separate goroutine so the blocking Scan cannot stall the
	// outer select on context cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			return err

		case line, ok := <-lineChan:
			if !ok {
				// source reached EOF
				if err := scan.Err(); err != nil {
					return err
				}
				return nil
			}

			f.closingMu.Lock()
			if f.closing {
				f.closingMu.Unlock()
				return nil
			}
			f.closingMu.Unlock()

			f.subscriberMu.Lock()
			for _, ch := range f.subscribers {
				select {
				case ch <- line:
				default:
					// skip a blocked subscriber rather than
					// stalling the frame loop
				}
			}
			f.subscriberMu.Unlock()
		}
	}
}

// Close closes all subscriber channels and the underlying source.
func (f *Feed[T]) Close() error {
	f.closingMu.Lock()
	f.closing = true
	f.closingMu.Unlock()

	f.subscriberMu.Lock()
	for id, ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, id)
	}
	f.subscriberMu.Unlock()

	return f.source.Close()
}
