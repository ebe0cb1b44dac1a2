// Package transport implements the raw byte channels print data travels
// over: USB bulk OUT, serial ports, TCP 9100 endpoints and the OS spooler.
// Drivers open short-lived connections; one connection never outlives the
// job attempt that opened it.
package transport

import (
	"context"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
)

// Conn is an open channel to one device. Write sends one complete payload;
// for stream transports that is a raw write, for the spooler it is one
// submitted job.
type Conn interface {
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Driver opens connections for one transport kind
type Driver interface {
	Kind() device.Transport
	Available(d device.Descriptor) bool
	Open(ctx context.Context, d device.Descriptor) (Conn, error)
}

// DocumentSubmitter hands a rendered file to the OS print service. Only the
// spooler driver implements it; raw transports have no document concept.
type DocumentSubmitter interface {
	SubmitDocument(ctx context.Context, deviceName, filePath string) error
}

// Drivers maps each transport kind to its driver
type Drivers map[device.Transport]Driver

// NewDrivers wires the standard driver set
func NewDrivers() Drivers {
	return Drivers{
		device.TransportUsb:     NewUSBDriver(),
		device.TransportSerial:  NewSerialDriver(),
		device.TransportNetwork: NewNetworkDriver(),
		device.TransportSpooler: NewSpoolerDriver(),
	}
}

// For returns the driver able to carry raw bytes to the device
func (ds Drivers) For(d device.Descriptor) (Driver, bool) {
	drv, ok := ds[d.Transport]
	if !ok || !drv.Available(d) {
		return nil, false
	}
	return drv, true
}
