package discovery

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"

	"github.com/rs/zerolog/log"
)

// The wifi manager prints its address in several formats depending on the
// firmware build; all of them are matched, first hit wins.
var ipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sta ip:\s*(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)Got IP address:\s*(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)IP[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)WiFi connected[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)Station IP[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)IP4 addr[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)WIFI:(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)ESP32-C6 IP[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)MCP server.*IP[:\s]+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
	regexp.MustCompile(`(?i)HTTP server.*(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`),
}

// ValidIP reports whether ip is a routable dotted-quad station address.
// Excludes 0.x and 127.x, link-local 169.254.x, and multicast/reserved
// ranges (>= 224.x).
func ValidIP(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}

	nums := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
		nums[i] = n
	}

	if nums[0] == 0 || nums[0] == 127 {
		return false
	}
	if nums[0] == 169 && nums[1] == 254 {
		return false
	}
	if nums[0] >= 224 {
		return false
	}

	return true
}

// ExtractIP pulls the first valid station address out of one line of log
// output, empty when the line has none.
func ExtractIP(line string) string {
	for _, pattern := range ipPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if ip := match[1]; ValidIP(ip) {
			return ip
		}
	}
	return ""
}

// ScrapeLines reads lines from r until a valid address appears or r is
// exhausted. ctx is only observed between lines, so a reader that can block
// indefinitely needs its own read timeouts; ScrapeSerial polls with a short
// timeout for exactly that reason.
func ScrapeLines(ctx context.Context, r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		log.Debug().Str("line", line).Msg("scrape")

		if ip := ExtractIP(line); ip != "" {
			log.Info().Str("ip", ip).Msg("found device ip address")
			return ip, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", apperrors.Discovery("error reading line stream", err)
	}
	return "", apperrors.Discovery("no ip address found", nil)
}

// ScrapeFile searches a captured monitor log for the device address.
func ScrapeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.Discovery("failed to open log file", err)
	}
	defer f.Close()

	log.Info().Str("file", path).Msg("searching log file for device ip address")
	return ScrapeLines(ctx, f)
}

// Scrape resolves an endpoint by watching a line stream for the device's
// address.
type Scrape struct {
	Source io.Reader
	Port   int
}

func (s Scrape) Resolve(ctx context.Context) (Endpoint, error) {
	ip, err := ScrapeLines(ctx, s.Source)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{Host: ip, Port: s.Port}, nil
}
