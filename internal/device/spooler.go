package device

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"runtime"
	"strings"
)

// SpoolerSource lists printers known to the OS print service: CUPS via
// lpstat on linux and darwin, the Windows spooler via PowerShell.
type SpoolerSource struct{}

// NewSpoolerSource returns the spooler enumerator for the current OS
func NewSpoolerSource() *SpoolerSource { return &SpoolerSource{} }

func (s *SpoolerSource) Name() string { return "spooler" }

func (s *SpoolerSource) Enumerate(ctx context.Context) ([]Descriptor, error) {
	if runtime.GOOS == "windows" {
		return s.enumerateWindows(ctx)
	}
	return s.enumerateCUPS(ctx)
}

func (s *SpoolerSource) enumerateCUPS(ctx context.Context) ([]Descriptor, error) {
	out, err := exec.CommandContext(ctx, "lpstat", "-p").Output()
	if err != nil {
		// lpstat exits non-zero when no destinations exist; an empty
		// spooler is a valid state, not a failure
		return []Descriptor{}, nil
	}

	defaultName := cupsDefault(ctx)
	var devices []Descriptor
	for _, line := range strings.Split(string(out), "\n") {
		// "printer POS-80 is idle.  enabled since ..."
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "printer" {
			continue
		}
		name := fields[1]
		status := StatusReady
		if strings.Contains(line, "disabled") {
			status = StatusOffline
		}
		devices = append(devices, Descriptor{
			Name:      name,
			Transport: TransportSpooler,
			IsDefault: name == defaultName,
			Status:    status,
		})
	}
	return devices, nil
}

func cupsDefault(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "lpstat", "-d").Output()
	if err != nil {
		return ""
	}
	// "system default destination: POS-80"
	line := strings.TrimSpace(string(out))
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

type winPrinter struct {
	Name        string `json:"Name"`
	Default     bool   `json:"Default"`
	WorkOffline bool   `json:"WorkOffline"`
	PortName    string `json:"PortName"`
}

func (s *SpoolerSource) enumerateWindows(ctx context.Context) ([]Descriptor, error) {
	script := "Get-CimInstance Win32_Printer | Select-Object Name,Default,WorkOffline,PortName | ConvertTo-Json -Compress"
	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script).Output()
	if err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(out)
	if len(data) == 0 {
		return []Descriptor{}, nil
	}

	// ConvertTo-Json emits a bare object for a single printer
	var printers []winPrinter
	if data[0] == '{' {
		var one winPrinter
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, err
		}
		printers = append(printers, one)
	} else if err := json.Unmarshal(data, &printers); err != nil {
		return nil, err
	}

	devices := make([]Descriptor, 0, len(printers))
	for _, p := range printers {
		if p.Name == "" {
			continue
		}
		status := StatusReady
		if p.WorkOffline {
			status = StatusOffline
		}
		devices = append(devices, Descriptor{
			Name:      p.Name,
			Transport: TransportSpooler,
			IsDefault: p.Default,
			PortHint:  p.PortName,
			Status:    status,
		})
	}
	return devices, nil
}
