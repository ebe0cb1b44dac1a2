package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/tarm/serial"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// SerialDriver opens raw serial connections to thermal printers. Most units
// speak 9600 8N1 out of the box; Baud overrides that when a printer is
// configured differently.
type SerialDriver struct {
	Baud int
}

// NewSerialDriver returns the serial driver at the default baud rate
func NewSerialDriver() *SerialDriver { return &SerialDriver{} }

func (d *SerialDriver) Kind() device.Transport { return device.TransportSerial }

func (d *SerialDriver) Available(desc device.Descriptor) bool {
	return desc.Transport == device.TransportSerial
}

func (d *SerialDriver) Open(ctx context.Context, desc device.Descriptor) (Conn, error) {
	port := desc.PortHint
	if port == "" {
		port = desc.Name
	}
	baud := d.Baud
	if baud == 0 {
		baud = 9600
	}

	p, err := serial.OpenPort(&serial.Config{Name: port, Baud: baud})
	if err != nil {
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable,
			fmt.Sprintf("failed to open serial port %s", port), err)
	}
	return &serialConn{port: p}, nil
}

type serialConn struct {
	port *serial.Port
	mu   sync.Mutex
}

// Write pushes the payload through the port in a goroutine so a stalled
// printer cannot outlive the attempt context. The port write itself is not
// interruptible; an abandoned write finishes or fails on Close.
func (c *serialConn) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.port.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("serial write: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *serialConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		return c.port.Close()
	}
	return nil
}
