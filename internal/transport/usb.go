package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/gousb"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// USBDriver writes ESC/POS bytes to a printer's bulk OUT endpoint
type USBDriver struct{}

// NewUSBDriver returns the raw USB driver
func NewUSBDriver() *USBDriver { return &USBDriver{} }

func (d *USBDriver) Kind() device.Transport { return device.TransportUsb }

func (d *USBDriver) Available(desc device.Descriptor) bool {
	if desc.Transport != device.TransportUsb {
		return false
	}
	_, _, err := parseUSBHint(desc.PortHint)
	return err == nil
}

// parseUSBHint extracts vendor/product IDs from a "usb:VVVV:PPPP" hint
func parseUSBHint(hint string) (uint16, uint16, error) {
	rest, ok := strings.CutPrefix(hint, "usb:")
	if !ok {
		return 0, 0, fmt.Errorf("not a usb port hint: %q", hint)
	}
	var vid, pid uint16
	if _, err := fmt.Sscanf(rest, "%04X:%04X", &vid, &pid); err != nil {
		return 0, 0, fmt.Errorf("malformed usb port hint %q: %w", hint, err)
	}
	return vid, pid, nil
}

func (d *USBDriver) Open(ctx context.Context, desc device.Descriptor) (Conn, error) {
	vid, pid, err := parseUSBHint(desc.PortHint)
	if err != nil {
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable, "bad usb hint", err)
	}

	usbCtx := gousb.NewContext()
	dev, err := usbCtx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		usbCtx.Close()
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable, "failed to open usb device", err)
	}
	if dev == nil {
		usbCtx.Close()
		return nil, printjob.NewError(printjob.ErrTransportUnavailable,
			fmt.Sprintf("usb device %04X:%04X not present", vid, pid))
	}

	done, ep, err := claimOutEndpoint(dev)
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return nil, printjob.WrapError(printjob.ErrTransportUnavailable, "no writable usb endpoint", err)
	}

	return &usbConn{usbCtx: usbCtx, dev: dev, done: done, ep: ep}, nil
}

// claimOutEndpoint tries the default interface first, then walks every
// configuration and interface looking for a bulk OUT endpoint. Printers that
// ship with a kernel driver attached need the auto-detach retry.
func claimOutEndpoint(dev *gousb.Device) (func(), *gousb.OutEndpoint, error) {
	iface, done, err := dev.DefaultInterface()
	if err != nil {
		dev.SetAutoDetach(true)
		iface, done, err = dev.DefaultInterface()
	}
	if err == nil {
		if ep := findOut(iface); ep != nil {
			return done, ep, nil
		}
		done()
	}

	var lastErr error
	for _, cfgDesc := range dev.Desc.Configs {
		cfg, err := dev.Config(cfgDesc.Number)
		if err != nil {
			lastErr = fmt.Errorf("config %d: %w", cfgDesc.Number, err)
			continue
		}
		for _, ifaceDesc := range cfgDesc.Interfaces {
			iface, err := cfg.Interface(ifaceDesc.Number, 0)
			if err != nil {
				lastErr = fmt.Errorf("interface %d: %w", ifaceDesc.Number, err)
				continue
			}
			if ep := findOut(iface); ep != nil {
				release := func() {
					iface.Close()
					cfg.Close()
				}
				return release, ep, nil
			}
			iface.Close()
		}
		cfg.Close()
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no bulk OUT endpoint")
	}
	return nil, nil, lastErr
}

func findOut(iface *gousb.Interface) *gousb.OutEndpoint {
	for _, epDesc := range iface.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut {
			if ep, err := iface.OutEndpoint(epDesc.Number); err == nil {
				return ep
			}
		}
	}
	return nil
}

type usbConn struct {
	usbCtx *gousb.Context
	dev    *gousb.Device
	done   func()
	ep     *gousb.OutEndpoint
	mu     sync.Mutex
}

func (c *usbConn) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ep.WriteContext(ctx, data); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("usb write: %w", err)
	}
	return nil
}

func (c *usbConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		c.done()
	}
	if c.dev != nil {
		c.dev.Close()
	}
	if c.usbCtx != nil {
		c.usbCtx.Close()
	}
	return nil
}
