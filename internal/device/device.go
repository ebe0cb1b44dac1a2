// Package device discovers printers across the OS spooler, USB bus, serial
// ports and configured network endpoints, and classifies them as thermal or
// standard. Discovery is explicit: callers ask for a refresh, nothing polls
// in the background.
package device

// Transport is the channel a device is reachable through
type Transport string

const (
	TransportSpooler Transport = "spooler"
	TransportUsb     Transport = "usb"
	TransportSerial  Transport = "serial"
	TransportNetwork Transport = "network"
)

// Status is the device availability seen at the last refresh
type Status string

const (
	StatusReady   Status = "ready"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"
)

// Descriptor describes one printer. The name is the only stable identity
// across refreshes. Descriptors are value types: a refresh builds a new
// snapshot list and never mutates a published one.
type Descriptor struct {
	Name      string    `json:"name"`
	Transport Transport `json:"transport"`
	IsDefault bool      `json:"is_default"`
	IsThermal bool      `json:"is_thermal"`
	PortHint  string    `json:"port_hint,omitempty"`
	Status    Status    `json:"status"`
}
