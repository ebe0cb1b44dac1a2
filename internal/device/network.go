package device

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"
)

// NetworkEndpoint is an operator-configured raw printing endpoint. Network
// printers are never auto-discovered; they are added explicitly and carried
// through every refresh.
type NetworkEndpoint struct {
	Name string `json:"name" yaml:"name"`
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"` // zero means 9100
}

// NetworkSource turns configured endpoints into descriptors, probing
// reachability for the status field.
type NetworkSource struct {
	mu        sync.Mutex
	endpoints []NetworkEndpoint
	timeout   time.Duration
}

// NewNetworkSource builds the source over the configured endpoints
func NewNetworkSource(endpoints []NetworkEndpoint) *NetworkSource {
	return &NetworkSource{endpoints: endpoints, timeout: 2 * time.Second}
}

func (s *NetworkSource) Name() string { return "network" }

// Add registers an endpoint at runtime. Duplicate names are replaced.
func (s *NetworkSource) Add(e NetworkEndpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.endpoints {
		if existing.Name == e.Name {
			s.endpoints[i] = e
			return
		}
	}
	s.endpoints = append(s.endpoints, e)
}

func (s *NetworkSource) Enumerate(ctx context.Context) ([]Descriptor, error) {
	s.mu.Lock()
	endpoints := make([]NetworkEndpoint, len(s.endpoints))
	copy(endpoints, s.endpoints)
	s.mu.Unlock()

	out := make([]Descriptor, 0, len(endpoints))
	for _, e := range endpoints {
		port := e.Port
		if port == 0 {
			port = 9100
		}
		addr := net.JoinHostPort(e.Host, strconv.Itoa(port))

		status := StatusOffline
		dialer := net.Dialer{Timeout: s.timeout}
		if conn, err := dialer.DialContext(ctx, "tcp", addr); err == nil {
			conn.Close()
			status = StatusReady
		}

		name := e.Name
		if name == "" {
			name = addr
		}
		out = append(out, Descriptor{
			Name:      name,
			Transport: TransportNetwork,
			PortHint:  addr,
			Status:    status,
		})
	}
	return out, nil
}
