package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func TestParseUSBHint(t *testing.T) {
	vid, pid, err := parseUSBHint("usb:04B8:0E15")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if vid != 0x04B8 || pid != 0x0E15 {
		t.Errorf("got %04X:%04X, want 04B8:0E15", vid, pid)
	}

	if _, _, err := parseUSBHint("serial:/dev/ttyUSB0"); err == nil {
		t.Error("expected error for non-usb hint")
	}
	if _, _, err := parseUSBHint("usb:xxxx:yyyy"); err == nil {
		t.Error("expected error for non-hex ids")
	}
	if _, _, err := parseUSBHint(""); err == nil {
		t.Error("expected error for empty hint")
	}
}

func TestDriverAvailability(t *testing.T) {
	drivers := NewDrivers()

	cases := []struct {
		desc device.Descriptor
		want device.Transport
	}{
		{device.Descriptor{Name: "POS-80", Transport: device.TransportSpooler}, device.TransportSpooler},
		{device.Descriptor{Name: "TM-T20", Transport: device.TransportUsb, PortHint: "usb:04B8:0E15"}, device.TransportUsb},
		{device.Descriptor{Name: "ttyUSB0", Transport: device.TransportSerial, PortHint: "/dev/ttyUSB0"}, device.TransportSerial},
		{device.Descriptor{Name: "kitchen", Transport: device.TransportNetwork, PortHint: "192.168.1.50:9100"}, device.TransportNetwork},
	}

	for _, c := range cases {
		drv, ok := drivers.For(c.desc)
		if !ok {
			t.Fatalf("no driver for %s", c.desc.Transport)
		}
		if drv.Kind() != c.want {
			t.Errorf("driver kind = %s, want %s", drv.Kind(), c.want)
		}
		if !drv.Available(c.desc) {
			t.Errorf("%s driver should accept its own descriptor", c.want)
		}
	}

	// network devices without an address are not printable
	netDrv := drivers[device.TransportNetwork]
	if netDrv.Available(device.Descriptor{Name: "bare", Transport: device.TransportNetwork}) {
		t.Error("network driver should reject descriptor without address")
	}
	if netDrv.Available(device.Descriptor{Name: "POS-80", Transport: device.TransportSpooler}) {
		t.Error("network driver should reject spooler descriptor")
	}
}

func TestNetworkConnWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 64)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	}()

	drv := &NetworkDriver{DialTimeout: time.Second}
	desc := device.Descriptor{
		Name:      "test-printer",
		Transport: device.TransportNetwork,
		PortHint:  ln.Addr().String(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := drv.Open(ctx, desc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	payload := []byte{0x1B, 0x40, 'O', 'K'}
	if err := conn.Write(ctx, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(payload) {
			t.Errorf("server received % X, want % X", got, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received payload")
	}
}

func TestNetworkOpenUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	drv := &NetworkDriver{DialTimeout: 500 * time.Millisecond}
	desc := device.Descriptor{Name: "gone", Transport: device.TransportNetwork, PortHint: addr}

	_, err = drv.Open(context.Background(), desc)
	if err == nil {
		t.Fatal("expected open to fail against closed port")
	}
	if printjob.KindOf(err) != printjob.ErrTransportUnavailable {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrTransportUnavailable)
	}
}

func TestNetworkOpenWithoutAddress(t *testing.T) {
	drv := &NetworkDriver{}
	_, err := drv.Open(context.Background(), device.Descriptor{Name: "bare", Transport: device.TransportNetwork})
	if err == nil {
		t.Fatal("expected error for missing address")
	}
	if printjob.KindOf(err) != printjob.ErrTransportUnavailable {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrTransportUnavailable)
	}
}

func TestSpoolErrClassification(t *testing.T) {
	base := errors.New("exit status 1")

	err := spoolErr(context.Background(), "lp raw", []byte("lp: The printer or class does not exist.\n"), base)
	if printjob.KindOf(err) != printjob.ErrDeviceNotFound {
		t.Errorf("missing destination: kind = %s, want %s", printjob.KindOf(err), printjob.ErrDeviceNotFound)
	}

	err = spoolErr(context.Background(), "lp raw", []byte("lp: not accepting jobs\n"), base)
	if printjob.KindOf(err) == printjob.ErrDeviceNotFound {
		t.Error("generic spool failure should stay unclassified")
	}
	if err == nil || !errors.Is(err, base) {
		t.Error("generic spool failure should wrap the exec error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = spoolErr(ctx, "lp raw", nil, base)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context should surface ctx.Err, got %v", err)
	}
}

func TestSerialOpenMissingPort(t *testing.T) {
	drv := &SerialDriver{}
	desc := device.Descriptor{
		Name:      "ttyUSB99",
		Transport: device.TransportSerial,
		PortHint:  "/dev/ttyUSB99-not-present",
	}

	_, err := drv.Open(context.Background(), desc)
	if err == nil {
		t.Skip("unexpected serial port present")
	}
	if printjob.KindOf(err) != printjob.ErrTransportUnavailable {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrTransportUnavailable)
	}
}

func TestNetworkWriteDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	// accept but never read, so a large enough write must stall
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(5 * time.Second)
	}()

	drv := &NetworkDriver{DialTimeout: time.Second}
	desc := device.Descriptor{Name: "stalled", Transport: device.TransportNetwork, PortHint: ln.Addr().String()}

	conn, err := drv.Open(context.Background(), desc)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	// enough data to overflow the kernel socket buffers
	payload := make([]byte, 32<<20)
	start := time.Now()
	err = conn.Write(ctx, payload)
	if err == nil {
		t.Skip("kernel buffered the whole payload")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("stalled write should report deadline, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("write did not respect deadline, took %s", elapsed)
	}
}
