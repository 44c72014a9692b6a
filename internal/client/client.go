package client

import (
	"sync"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
	"github.com/sjzar/mcpprobe/internal/mcp"

	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 10 * time.Second

// Client drives the tool invocation protocol over one connection. Calls are
// strictly serialized: Call blocks until its own response or timeout before
// the next request goes out.
type Client struct {
	// callMu holds concurrent callers to one in-flight request, so the
	// receive loop below only ever waits for its own id.
	callMu  sync.Mutex
	conn    *Conn
	corr    *mcp.Correlator
	stats   *Stats
	timeout time.Duration
}

func New(conn *Conn, stats *Stats, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		conn:    conn,
		corr:    mcp.NewCorrelator(),
		stats:   stats,
		timeout: timeout,
	}
}

// Conn exposes the underlying connection for lifecycle management.
func (c *Client) Conn() *Conn {
	return c.conn
}

// Stats exposes the run counters.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Connect opens the transport and resets request correlation for the new
// connection.
func (c *Client) Connect(dial Dialer) error {
	if err := c.conn.Connect(dial); err != nil {
		return err
	}
	c.corr.Reset()
	return nil
}

// Close tears the connection down. Safe on every exit path.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call performs one JSON-RPC round trip: assign id, register, encode, send,
// then receive until the matching response arrives or the timeout elapses.
// Responses to unknown ids are logged and dropped; they are usually late
// replies to an already timed out request.
func (c *Client) Call(method string, params mcp.M, timeout time.Duration) (*mcp.Response, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if timeout <= 0 {
		timeout = c.timeout
	}
	if c.conn.State() != StateConnected {
		return nil, apperrors.NotConnected()
	}

	id := c.corr.NextID()
	req := mcp.NewRequest(id, method, params)
	frame, err := mcp.Encode(req)
	if err != nil {
		return nil, err
	}
	if _, err := c.corr.Register(id, method); err != nil {
		return nil, err
	}

	if err := c.conn.Send(frame); err != nil {
		c.dropPending()
		c.stats.IncErrors()
		return nil, err
	}
	c.stats.IncSent()
	log.Debug().Int64("id", id).Str("method", method).Msg("sent")

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.expire(timeout)
			c.stats.IncErrors()
			return nil, apperrors.Timeout(method, timeout)
		}

		raw, err := c.conn.Receive(remaining)
		if err != nil {
			c.stats.IncErrors()
			if apperrors.Is(err, apperrors.ErrTypeTimeout) {
				c.expire(timeout)
				return nil, apperrors.Timeout(method, timeout)
			}
			c.dropPending()
			return nil, err
		}

		resp, err := mcp.Decode(raw)
		if err != nil {
			c.dropPending()
			c.stats.IncErrors()
			return nil, err
		}
		c.stats.IncReceived()
		log.Debug().Int64("id", resp.ID).Msg("received")

		if _, err := c.corr.Resolve(resp); err != nil {
			log.Warn().Int64("id", resp.ID).Msg("dropping response for unknown request id")
			continue
		}

		if resp.Error != nil {
			c.stats.IncErrors()
			return resp, apperrors.Remote(resp.Error.Code, resp.Error.Message)
		}
		return resp, nil
	}
}

// expire removes timed out pending requests so the table never leaks.
func (c *Client) expire(timeout time.Duration) {
	for _, pr := range c.corr.Expire(time.Now(), 0) {
		log.Warn().Int64("id", pr.ID).Str("method", pr.Method).Msgf("request timed out after %s", timeout)
	}
}

// dropPending clears the table after a failed call, the connection is no
// longer in a state where a matching response can arrive.
func (c *Client) dropPending() {
	c.corr.Expire(time.Now(), 0)
}
