package client

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"github.com/rs/zerolog/log"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateErrored:
		return "error"
	default:
		return "unknown"
	}
}

const readChunkSize = 4096

// Conn owns the single transport to the device. It assembles newline
// delimited frames out of raw reads, so callers always see whole messages.
// Close is safe to call from another goroutine while a Receive is blocked.
type Conn struct {
	mu          sync.Mutex
	tr          Transport
	buf         bytes.Buffer // partial frame carried across reads
	connectedAt time.Time

	state atomic.Int32
	stats *Stats
}

func NewConn(stats *Stats) *Conn {
	return &Conn{stats: stats}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// Remote describes the connected endpoint, empty when disconnected.
func (c *Conn) Remote() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tr == nil {
		return ""
	}
	return c.tr.Remote()
}

// ConnectedAt returns when the current connection was established.
func (c *Conn) ConnectedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectedAt
}

// Connect opens the transport. The dialer carries its own bounded timeout
// and returns a classified connect error on failure, which leaves the
// connection in the error state until the next Connect attempt.
func (c *Conn) Connect(dial Dialer) error {
	if c.State() == StateConnected {
		return nil
	}
	c.state.Store(int32(StateConnecting))

	tr, err := dial()
	if err != nil {
		c.state.Store(int32(StateErrored))
		return err
	}

	c.mu.Lock()
	c.tr = tr
	c.buf.Reset()
	c.connectedAt = time.Now()
	c.mu.Unlock()
	c.state.Store(int32(StateConnected))

	if c.stats != nil {
		c.stats.MarkConnected()
	}
	log.Info().Str("endpoint", tr.Remote()).Msg("connected to mcp server")
	return nil
}

// Send writes one encoded frame, retrying partial writes until the whole
// message is on the wire or the connection is judged broken.
func (c *Conn) Send(b []byte) error {
	tr := c.transport()
	if tr == nil || c.State() != StateConnected {
		return apperrors.NotConnected()
	}

	for len(b) > 0 {
		n, err := tr.Write(b)
		if err != nil {
			c.state.Store(int32(StateErrored))
			return apperrors.SendFailed(err)
		}
		b = b[n:]
	}
	return nil
}

// Receive blocks until a full newline-terminated frame is available, the
// timeout elapses, or the peer closes the stream. The returned frame
// includes its terminator. Bytes beyond the first terminator stay buffered
// for the next call.
func (c *Conn) Receive(timeout time.Duration) ([]byte, error) {
	tr := c.transport()
	if tr == nil || c.State() != StateConnected {
		return nil, apperrors.NotConnected()
	}

	deadline := time.Now().Add(timeout)
	chunk := make([]byte, readChunkSize)

	for {
		if frame := c.takeFrame(); frame != nil {
			return frame, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, apperrors.Timeout("receive", timeout)
		}
		if err := tr.SetReadTimeout(remaining); err != nil {
			return nil, apperrors.ReceiveFailed(err)
		}

		n, err := tr.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			c.mu.Unlock()
		}
		if err != nil {
			switch {
			case isTimeout(err):
				// bytes read so far stay buffered, the loop re-checks
				// the deadline and reports the timeout
				continue
			case errors.Is(err, io.EOF):
				c.state.Store(int32(StateDisconnected))
				return nil, apperrors.ConnectionClosed()
			case c.State() == StateDisconnected:
				// closed locally while blocked in Read
				return nil, apperrors.ConnectionClosed()
			default:
				c.state.Store(int32(StateErrored))
				return nil, apperrors.ReceiveFailed(err)
			}
		}
	}
}

// takeFrame pops one complete frame off the buffer, nil when none is
// complete yet.
func (c *Conn) takeFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := bytes.IndexByte(c.buf.Bytes(), '\n')
	if i < 0 {
		return nil
	}
	frame := make([]byte, i+1)
	copy(frame, c.buf.Next(i+1))
	return frame
}

// Close releases the transport. It is idempotent, always succeeds, and is
// safe to call in any state, including while a Receive is in flight.
func (c *Conn) Close() error {
	c.mu.Lock()
	tr := c.tr
	c.tr = nil
	c.buf.Reset()
	c.mu.Unlock()

	prev := State(c.state.Swap(int32(StateDisconnected)))
	if tr != nil {
		if err := tr.Close(); err != nil {
			log.Debug().Err(err).Msg("transport close")
		}
		if prev == StateConnected {
			log.Info().Msg("disconnected from mcp server")
		}
	}
	return nil
}

func (c *Conn) transport() Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr
}
