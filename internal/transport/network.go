package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// NetworkDriver speaks raw TCP to JetDirect-style printers, normally on
// port 9100. The attempt context bounds both the dial and every write.
type NetworkDriver struct {
	DialTimeout time.Duration
}

// NewNetworkDriver returns the TCP driver with the default dial timeout
func NewNetworkDriver() *NetworkDriver { return &NetworkDriver{} }

func (d *NetworkDriver) Kind() device.Transport { return device.TransportNetwork }

func (d *NetworkDriver) Available(desc device.Descriptor) bool {
	return desc.Transport == device.TransportNetwork && desc.PortHint != ""
}

func (d *NetworkDriver) Open(ctx context.Context, desc device.Descriptor) (Conn, error) {
	addr := desc.PortHint
	if addr == "" {
		return nil, printjob.NewError(printjob.ErrTransportUnavailable,
			fmt.Sprintf("network device %s has no address", desc.Name))
	}

	timeout := d.DialTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable,
			fmt.Sprintf("failed to connect to %s", addr), err)
	}
	return &networkConn{conn: conn}, nil
}

type networkConn struct {
	conn net.Conn
	mu   sync.Mutex
}

func (c *networkConn) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := c.conn.Write(data); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("network write: %w", err)
	}
	return nil
}

func (c *networkConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
