package mcp

import (
	"sync"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
)

// PendingRequest tracks an issued request until its response arrives or its
// timeout elapses.
type PendingRequest struct {
	ID       int64
	Method   string
	IssuedAt time.Time
}

// Correlator assigns request ids and matches inbound responses to their
// pending requests. The client issues one request at a time, so the table
// never holds more than one entry today; the mutex keeps the bookkeeping
// correct if pipelining is ever added.
type Correlator struct {
	mu      sync.Mutex
	nextID  int64
	pending map[int64]PendingRequest
}

func NewCorrelator() *Correlator {
	return &Correlator{
		nextID:  1,
		pending: make(map[int64]PendingRequest),
	}
}

// NextID returns the next request id. Ids start at 1 and are strictly
// increasing for the lifetime of the connection.
func (c *Correlator) NextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	return id
}

// Register records a pending request. A duplicate id cannot happen under
// monotonic issuance, so it is reported as an internal invariant violation.
func (c *Correlator) Register(id int64, method string) (PendingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[id]; ok {
		return PendingRequest{}, apperrors.DuplicateID(id)
	}

	pr := PendingRequest{
		ID:       id,
		Method:   method,
		IssuedAt: time.Now(),
	}
	c.pending[id] = pr
	return pr, nil
}

// Resolve removes and returns the pending request matching the response id.
// A response with no pending request is stale or spoofed; the caller should
// log it and drop it, never tear down the connection.
func (c *Correlator) Resolve(resp *Response) (PendingRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pr, ok := c.pending[resp.ID]
	if !ok {
		return PendingRequest{}, apperrors.UnknownID(resp.ID)
	}
	delete(c.pending, resp.ID)
	return pr, nil
}

// Expire removes and returns all pending requests older than timeout at now.
// The caller reports each one as a timeout failure.
func (c *Correlator) Expire(now time.Time, timeout time.Duration) []PendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []PendingRequest
	for id, pr := range c.pending {
		if now.Sub(pr.IssuedAt) >= timeout {
			expired = append(expired, pr)
			delete(c.pending, id)
		}
	}
	return expired
}

// Pending returns the number of requests awaiting a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Reset clears the pending table and restarts id assignment, for a fresh
// connection.
func (c *Correlator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID = 1
	c.pending = make(map[int64]PendingRequest)
}
