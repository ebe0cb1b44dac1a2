package device

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tarm/serial"
)

// SerialSource probes candidate serial ports and lists the ones that open.
// Raw serial receipt printers surface as USB-serial adapters on every
// platform this agent targets.
type SerialSource struct{}

// NewSerialSource returns the serial port enumerator
func NewSerialSource() *SerialSource { return &SerialSource{} }

func (s *SerialSource) Name() string { return "serial" }

func (s *SerialSource) Enumerate(ctx context.Context) ([]Descriptor, error) {
	var out []Descriptor
	for _, portPath := range candidatePorts() {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		cfg := &serial.Config{Name: portPath, Baud: 9600, ReadTimeout: 200 * time.Millisecond}
		port, err := serial.OpenPort(cfg)
		if err != nil {
			continue
		}
		port.Close()

		out = append(out, Descriptor{
			Name:      filepath.Base(portPath),
			Transport: TransportSerial,
			PortHint:  portPath,
			Status:    StatusReady,
		})
	}
	return out, nil
}

func candidatePorts() []string {
	var ports []string
	switch runtime.GOOS {
	case "darwin":
		skip := []string{"Bluetooth", "Modem", "SPP", "DialIn", "Callout", "KeySerial", "debug-console"}
		cu, _ := filepath.Glob("/dev/cu.*")
		tty, _ := filepath.Glob("/dev/tty.*")
		for _, p := range append(cu, tty...) {
			keep := true
			for _, pattern := range skip {
				if strings.Contains(p, pattern) {
					keep = false
					break
				}
			}
			if keep {
				ports = append(ports, p)
			}
		}
	case "linux":
		for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*"} {
			found, _ := filepath.Glob(pattern)
			ports = append(ports, found...)
		}
	case "windows":
		for i := 1; i <= 32; i++ {
			ports = append(ports, fmt.Sprintf("COM%d", i))
		}
	}
	return ports
}
