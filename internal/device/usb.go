package device

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

// USBSource scans the bus for printer-class devices (class 7, checked on the
// device descriptor and every interface alt setting).
type USBSource struct{}

// NewUSBSource returns the raw USB enumerator
func NewUSBSource() *USBSource { return &USBSource{} }

func (s *USBSource) Name() string { return "usb" }

func (s *USBSource) Enumerate(ctx context.Context) ([]Descriptor, error) {
	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return isPrinterClass(desc)
	})

	var out []Descriptor
	for _, dev := range devices {
		desc := dev.Desc
		product, _ := dev.Product()
		name := product
		if name == "" {
			name = fmt.Sprintf("USB %04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
		}
		out = append(out, Descriptor{
			Name:      name,
			Transport: TransportUsb,
			PortHint:  fmt.Sprintf("usb:%04X:%04X", uint16(desc.Vendor), uint16(desc.Product)),
			Status:    StatusReady,
		})
		dev.Close()
	}

	// OpenDevices can report errors for unrelated devices while still
	// returning the printers that opened fine
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("usb enumeration: %w", err)
	}
	return out, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
