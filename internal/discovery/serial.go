package discovery

import (
	"context"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	DefaultSerialPort = "/dev/ttyACM0"
	DefaultBaudRate   = 115200
)

// ScrapeSerial watches the device's serial console for its wifi address,
// giving up after timeout. The serial reader uses a short poll so ctx
// cancellation is honored between reads.
func ScrapeSerial(ctx context.Context, path string, baud int, timeout time.Duration) (string, error) {
	port, err := serial.Open(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return "", apperrors.Discovery("failed to open serial port "+path, err)
	}
	defer port.Close()

	if err := port.SetReadTimeout(time.Second); err != nil {
		return "", apperrors.Discovery("failed to configure serial port", err)
	}

	log.Info().Str("port", path).Int("baud", baud).Msgf("monitoring serial port for device ip (timeout: %s)", timeout)

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 4096)
	var line []byte

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := port.Read(buf)
		if err != nil {
			log.Warn().Err(err).Msg("serial read error")
			continue
		}

		for _, b := range buf[:n] {
			if b != '\n' {
				line = append(line, b)
				continue
			}
			if ip := ExtractIP(string(line)); ip != "" {
				log.Info().Str("ip", ip).Msg("found device ip address")
				return ip, nil
			}
			line = line[:0]
		}
	}

	return "", apperrors.Discovery("no ip address found on serial port before timeout", nil)
}
