package client

import (
	"net"
	"strconv"
	"testing"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
)

// rawServer accepts one connection and hands it to fn.
func rawServer(t *testing.T, fn func(conn net.Conn)) (host string, port int, closer func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ = strconv.Atoi(portStr)
	return host, port, func() { ln.Close() }
}

func TestConnLifecycle(t *testing.T) {
	host, port, closer := rawServer(t, func(conn net.Conn) {
		// hold the connection open until the client leaves
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	})
	defer closer()

	c := NewConn(NewStats())
	if c.State() != StateDisconnected {
		t.Fatalf("initial state = %s, want disconnected", c.State())
	}

	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if c.State() != StateConnected {
		t.Errorf("state after connect = %s, want connected", c.State())
	}
	if c.Remote() == "" {
		t.Errorf("Remote() empty after connect")
	}
	if c.ConnectedAt().IsZero() {
		t.Errorf("ConnectedAt() not recorded")
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if c.State() != StateDisconnected {
		t.Errorf("state after close = %s, want disconnected", c.State())
	}

	// idempotent
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestConnectRefused(t *testing.T) {
	// grab a port that nothing listens on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	ln.Close()

	c := NewConn(NewStats())
	err = c.Connect(TCPDialer(host, port, time.Second))
	if !apperrors.Is(err, apperrors.ErrTypeConnect) {
		t.Errorf("Connect() error = %v, want connect error", err)
	}
	if c.State() != StateErrored {
		t.Errorf("state after failed connect = %s, want error", c.State())
	}
}

func TestSendNotConnected(t *testing.T) {
	c := NewConn(NewStats())
	err := c.Send([]byte("{}\n"))
	if !apperrors.Is(err, apperrors.ErrTypeConnect) {
		t.Errorf("Send() while disconnected = %v, want not connected error", err)
	}
}

func TestReceiveAssemblesSplitFrames(t *testing.T) {
	frame := `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n"
	host, port, closer := rawServer(t, func(conn net.Conn) {
		_, _ = conn.Write([]byte(frame[:10]))
		time.Sleep(50 * time.Millisecond)
		_, _ = conn.Write([]byte(frame[10:]))
		time.Sleep(time.Second)
	})
	defer closer()

	c := NewConn(NewStats())
	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	got, err := c.Receive(2 * time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got) != frame {
		t.Errorf("Receive() = %q, want %q", got, frame)
	}
}

func TestReceiveBuffersExtraFrames(t *testing.T) {
	first := `{"jsonrpc":"2.0","id":1,"result":{}}` + "\n"
	second := `{"jsonrpc":"2.0","id":2,"result":{}}` + "\n"
	host, port, closer := rawServer(t, func(conn net.Conn) {
		_, _ = conn.Write([]byte(first + second))
		time.Sleep(time.Second)
	})
	defer closer()

	c := NewConn(NewStats())
	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	got, err := c.Receive(time.Second)
	if err != nil {
		t.Fatalf("first Receive() error = %v", err)
	}
	if string(got) != first {
		t.Errorf("first Receive() = %q, want %q", got, first)
	}

	got, err = c.Receive(time.Second)
	if err != nil {
		t.Fatalf("second Receive() error = %v", err)
	}
	if string(got) != second {
		t.Errorf("second Receive() = %q, want %q", got, second)
	}
}

func TestReceiveTimeout(t *testing.T) {
	host, port, closer := rawServer(t, func(conn net.Conn) {
		time.Sleep(time.Second)
	})
	defer closer()

	c := NewConn(NewStats())
	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	_, err := c.Receive(100 * time.Millisecond)
	if !apperrors.Is(err, apperrors.ErrTypeTimeout) {
		t.Errorf("Receive() = %v, want timeout error", err)
	}
	// timing out must not tear down the connection
	if c.State() != StateConnected {
		t.Errorf("state after receive timeout = %s, want connected", c.State())
	}
}

func TestReceivePeerClose(t *testing.T) {
	host, port, closer := rawServer(t, func(conn net.Conn) {
		conn.Close()
	})
	defer closer()

	c := NewConn(NewStats())
	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	_, err := c.Receive(time.Second)
	if !apperrors.Is(err, apperrors.ErrTypeIO) {
		t.Errorf("Receive() after peer close = %v, want io error", err)
	}
}

func TestCloseDuringReceive(t *testing.T) {
	host, port, closer := rawServer(t, func(conn net.Conn) {
		time.Sleep(2 * time.Second)
	})
	defer closer()

	c := NewConn(NewStats())
	if err := c.Connect(TCPDialer(host, port, time.Second)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(5 * time.Second)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Errorf("Receive() returned nil after Close()")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Receive() still blocked after Close()")
	}
}
