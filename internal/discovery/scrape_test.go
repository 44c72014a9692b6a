package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/sjzar/mcpprobe/internal/errors"
)

func TestValidIP(t *testing.T) {
	tests := []struct {
		ip    string
		valid bool
	}{
		{"192.168.1.100", true},
		{"10.0.0.5", true},
		{"172.16.0.150", true},
		{"127.0.0.1", false},
		{"169.254.1.5", false},
		{"224.0.0.1", false},
		{"255.255.255.255", false},
		{"0.1.2.3", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"192.168.1.256", false},
		{"192.168.one.1", false},
	}

	for _, tt := range tests {
		if got := ValidIP(tt.ip); got != tt.valid {
			t.Errorf("ValidIP(%q) = %v, want %v", tt.ip, got, tt.valid)
		}
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"sta ip", "I (5423) wifi_manager: sta ip: 192.168.1.123", "192.168.1.123"},
		{"got ip", "Got IP address: 10.0.0.42", "10.0.0.42"},
		{"wifi prefix", "WIFI:192.168.0.101", "192.168.0.101"},
		{"esp32 prefix", "ESP32-C6 IP: 192.168.1.77", "192.168.1.77"},
		{"case insensitive", "STA IP: 192.168.1.5", "192.168.1.5"},
		{"loopback rejected", "sta ip: 127.0.0.1", ""},
		{"link local rejected", "Got IP address: 169.254.10.10", ""},
		{"no address", "I (1234) boot: ESP-IDF v5.2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractIP(tt.line); got != tt.want {
				t.Errorf("ExtractIP(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestScrapeLines(t *testing.T) {
	input := strings.Join([]string{
		"I (100) boot: chip revision v0.1",
		"I (2000) wifi: connecting...",
		"I (5423) wifi_manager: sta ip: 192.168.1.123",
		"I (5500) mcp_server: listening on 8080",
	}, "\n")

	ip, err := ScrapeLines(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ScrapeLines() error = %v", err)
	}
	if ip != "192.168.1.123" {
		t.Errorf("ScrapeLines() = %q, want 192.168.1.123", ip)
	}
}

func TestScrapeLinesNotFound(t *testing.T) {
	_, err := ScrapeLines(context.Background(), strings.NewReader("nothing useful here\n"))
	if !apperrors.Is(err, apperrors.ErrTypeDiscovery) {
		t.Errorf("ScrapeLines() error = %v, want discovery error", err)
	}
}

// Cancellation is observed between lines: a done context wins even when the
// next line would have matched.
func TestScrapeLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScrapeLines(ctx, strings.NewReader("Got IP address: 192.168.1.100\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ScrapeLines() error = %v, want context.Canceled", err)
	}
}

func TestStaticResolver(t *testing.T) {
	ep, err := Static{Host: "192.168.1.100", Port: 8080}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ep.Host != "192.168.1.100" || ep.Port != 8080 {
		t.Errorf("Resolve() = %+v, want 192.168.1.100:8080", ep)
	}
}

func TestScrapeResolver(t *testing.T) {
	src := strings.NewReader("Got IP address: 10.0.0.42\n")
	ep, err := Scrape{Source: src, Port: 8080}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ep.Host != "10.0.0.42" || ep.Port != 8080 {
		t.Errorf("Resolve() = %+v, want 10.0.0.42:8080", ep)
	}
}
