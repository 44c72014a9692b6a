package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"go.bug.st/serial"
)

// Transport is the raw byte stream the client talks over. The firmware
// exposes the same line protocol on a TCP socket and on the usb serial
// console, so both hide behind one interface.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds the next Read. A non-positive value blocks
	// forever. Timed out reads fail with os.ErrDeadlineExceeded.
	SetReadTimeout(d time.Duration) error

	// Remote describes the endpoint for logging.
	Remote() string
}

// Dialer opens a transport to a configured endpoint.
type Dialer func() (Transport, error)

// TCPDialer dials the device over wifi. Default port is 8080.
func TCPDialer(host string, port int, timeout time.Duration) Dialer {
	return func() (Transport, error) {
		addr := net.JoinHostPort(host, fmt.Sprint(port))
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, classifyDialError(addr, err, timeout)
		}
		return &tcpTransport{conn: conn}, nil
	}
}

// SerialDialer opens the device's serial console. Default baud rate is
// 115200.
func SerialDialer(path string, baud int) Dialer {
	return func() (Transport, error) {
		port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
		if err != nil {
			return nil, classifyDialError(path, err, 0)
		}
		return &serialTransport{port: port, path: path}, nil
	}
}

func classifyDialError(endpoint string, err error, timeout time.Duration) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.ConnectTimeout(endpoint, timeout)
	case errors.Is(err, syscall.ECONNREFUSED):
		return apperrors.ConnectRefused(endpoint, err)
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH), isDNSNotFound(err), os.IsNotExist(err), errors.Is(err, syscall.ENOENT):
		return apperrors.EndpointNotFound(endpoint, err)
	case os.IsPermission(err), errors.Is(err, syscall.EACCES):
		return apperrors.PermissionDenied(endpoint, err)
	default:
		return apperrors.New(apperrors.ErrTypeConnect, fmt.Sprintf("failed to connect to %s", endpoint), err)
	}
}

func isDNSNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

// isTimeout reports whether a read failed because its deadline elapsed.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type tcpTransport struct {
	conn net.Conn
}

func (t *tcpTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *tcpTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpTransport) Close() error                { return t.conn.Close() }

func (t *tcpTransport) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.conn.SetReadDeadline(time.Time{})
	}
	return t.conn.SetReadDeadline(time.Now().Add(d))
}

func (t *tcpTransport) Remote() string {
	return t.conn.RemoteAddr().String()
}

type serialTransport struct {
	port serial.Port
	path string
}

// Read normalizes the serial library's timeout behavior (zero bytes, nil
// error) into os.ErrDeadlineExceeded so the connection layer handles both
// transports the same way.
func (t *serialTransport) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if n == 0 && err == nil {
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

func (t *serialTransport) Write(p []byte) (int, error) { return t.port.Write(p) }
func (t *serialTransport) Close() error                { return t.port.Close() }

func (t *serialTransport) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return t.port.SetReadTimeout(serial.NoTimeout)
	}
	return t.port.SetReadTimeout(d)
}

func (t *serialTransport) Remote() string {
	return t.path
}
