package discovery

import (
	"context"
)

// Endpoint is a resolved device address.
type Endpoint struct {
	Host string
	Port int
}

// Resolver finds the device endpoint. The protocol engine never discovers
// anything itself, it is handed an endpoint by one of these. Strategies can
// be swapped without touching the client: static config, subnet scanning,
// serial log scraping.
type Resolver interface {
	Resolve(ctx context.Context) (Endpoint, error)
}

// Static resolves to a fixed endpoint.
type Static struct {
	Host string
	Port int
}

func (s Static) Resolve(ctx context.Context) (Endpoint, error) {
	return Endpoint{Host: s.Host, Port: s.Port}, nil
}
