package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"github.com/rs/zerolog/log"
)

// Common private ranges the device lands on via dhcp.
var defaultSubnets = []string{
	"192.168.1.%d",
	"192.168.0.%d",
	"10.0.0.%d",
	"172.16.0.%d",
}

const (
	scanHostFirst = 100
	scanHostLast  = 199
)

// Scan probes the usual dhcp range of the local subnets for a listening mcp
// port. Slow and noisy, but needs zero configuration; last resort when the
// serial log is not available.
type Scan struct {
	Port         int
	ProbeTimeout time.Duration
	Subnets      []string
}

func NewScan(port int) *Scan {
	return &Scan{
		Port:         port,
		ProbeTimeout: 100 * time.Millisecond,
		Subnets:      defaultSubnets,
	}
}

func (s *Scan) Resolve(ctx context.Context) (Endpoint, error) {
	log.Info().Int("port", s.Port).Msg("scanning local subnets for mcp server")

	for _, subnet := range s.Subnets {
		for host := scanHostFirst; host <= scanHostLast; host++ {
			if err := ctx.Err(); err != nil {
				return Endpoint{}, err
			}

			ip := fmt.Sprintf(subnet, host)
			addr := net.JoinHostPort(ip, fmt.Sprint(s.Port))
			conn, err := net.DialTimeout("tcp", addr, s.ProbeTimeout)
			if err != nil {
				continue
			}
			conn.Close()

			log.Info().Str("endpoint", addr).Msg("found mcp server")
			return Endpoint{Host: ip, Port: s.Port}, nil
		}
	}

	return Endpoint{}, apperrors.Discovery("no mcp server found on local subnets", nil)
}
