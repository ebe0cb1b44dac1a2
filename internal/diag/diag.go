// Package diag builds the printer health report support staff work from.
// A report is regenerated on every request from the live registry and the
// seen-devices history; nothing here is cached or persisted. The Report
// struct is the programmatic form, Render is the hand-off document, both
// fed from the same data.
package diag

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/dispatch"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Severity is the report rollup level
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeveritySuccess: 0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// DeviceRow is one device in the report: the current descriptor plus what
// the seen-devices history remembers about it.
type DeviceRow struct {
	device.Descriptor
	LastSeen    time.Time `json:"last_seen,omitempty"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// MissingDevice is a device the agent printed to before that the current
// refresh no longer lists.
type MissingDevice struct {
	Name      string           `json:"name"`
	Transport device.Transport `json:"transport,omitempty"`
	LastSeen  time.Time        `json:"last_seen,omitempty"`
}

// Report is the diagnostic snapshot returned to callers and serialized by
// the agent API.
type Report struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Host            string          `json:"host,omitempty"`
	AgentVersion    string          `json:"agent_version,omitempty"`
	Severity        Severity        `json:"severity"`
	Summary         string          `json:"summary"`
	Devices         []DeviceRow     `json:"devices"`
	ThermalCount    int             `json:"thermal_count"`
	Missing         []MissingDevice `json:"missing,omitempty"`
	DefaultReceipt  string          `json:"default_receipt_device,omitempty"`
	DefaultLabel    string          `json:"default_label_device,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

// Config wires a Reporter. Seen and Settings are optional.
type Config struct {
	Registry   *device.Registry
	Seen       *device.SeenStore
	Dispatcher *dispatch.Dispatcher
	Settings   func() dispatch.Settings
	Version    string
	Logger     *zap.Logger
}

// Reporter runs diagnostics against the live registry and dispatcher
type Reporter struct {
	registry   *device.Registry
	seen       *device.SeenStore
	dispatcher *dispatch.Dispatcher
	settings   func() dispatch.Settings
	version    string
	log        *zap.Logger
}

func New(cfg Config) *Reporter {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	settings := cfg.Settings
	if settings == nil {
		settings = func() dispatch.Settings { return dispatch.Settings{} }
	}
	return &Reporter{
		registry:   cfg.Registry,
		seen:       cfg.Seen,
		dispatcher: cfg.Dispatcher,
		settings:   settings,
		version:    cfg.Version,
		log:        log,
	}
}

// Run refreshes the registry and rolls the result up into a Report. The
// registry persists the sighting itself; this only reads the history back.
func (r *Reporter) Run(ctx context.Context) Report {
	devices := r.registry.Refresh(ctx)
	s := r.settings()

	host, _ := os.Hostname()
	rep := Report{
		GeneratedAt:    time.Now(),
		Host:           host,
		AgentVersion:   r.version,
		Severity:       SeveritySuccess,
		Devices:        make([]DeviceRow, 0, len(devices)),
		DefaultReceipt: s.DefaultReceiptDevice,
		DefaultLabel:   s.DefaultLabelDevice,
	}

	for _, d := range devices {
		row := DeviceRow{Descriptor: d}
		if r.seen != nil {
			if sd, ok := r.seen.Get(d.Name); ok {
				row.LastSeen = sd.LastSeen
				row.LastSuccess = sd.LastSuccess
			}
		}
		if d.IsThermal {
			rep.ThermalCount++
		}
		rep.Devices = append(rep.Devices, row)
	}

	if r.seen != nil {
		for _, name := range r.seen.MissingFrom(devices) {
			m := MissingDevice{Name: name}
			if sd, ok := r.seen.Get(name); ok {
				m.Transport = sd.Transport
				m.LastSeen = sd.LastSeen
			}
			rep.Missing = append(rep.Missing, m)
		}
	}

	r.rollup(&rep, s)

	r.log.Info("diagnostic complete",
		zap.String("severity", string(rep.Severity)),
		zap.Int("devices", len(rep.Devices)),
		zap.Int("thermal", rep.ThermalCount),
		zap.Int("missing", len(rep.Missing)))
	return rep
}

// rollup decides severity and summary, and fills the recommendation list.
// Every failing condition contributes a recommendation; the most severe
// condition found first names the summary.
func (r *Reporter) rollup(rep *Report, s dispatch.Settings) {
	raise := func(sev Severity, summary string) {
		if severityRank[sev] > severityRank[rep.Severity] {
			rep.Severity = sev
			rep.Summary = summary
		}
	}
	recommend := func(format string, args ...interface{}) {
		rep.Recommendations = append(rep.Recommendations, fmt.Sprintf(format, args...))
	}

	if len(rep.Devices) == 0 {
		raise(SeverityError, "no print devices found")
		recommend("No devices were found on the spooler, USB bus or serial ports. Check cabling and power, then run a refresh.")
	}
	if name := s.DefaultReceiptDevice; name != "" && !hasDevice(rep.Devices, name) {
		raise(SeverityError, fmt.Sprintf("configured default device %q is absent", name))
		recommend("The default receipt device %q is not listed anymore. Reconnect it or pick a new default in settings.", name)
	}
	if name := s.DefaultLabelDevice; name != "" && !hasDevice(rep.Devices, name) {
		raise(SeverityError, fmt.Sprintf("configured label device %q is absent", name))
		recommend("The default label device %q is not listed anymore. Reconnect it or pick a new default in settings.", name)
	}

	if len(rep.Devices) > 0 && rep.ThermalCount == 0 {
		raise(SeverityWarning, "no thermal printer present, running in standard fallback mode")
		recommend("No thermal printer was detected. Receipts will print as rendered documents, which is slower and cannot open a cash drawer.")
	}
	if row, ok := r.receiptDefault(rep.Devices, s); ok && !rawCapable(row.Descriptor) {
		raise(SeverityWarning, fmt.Sprintf("default device %q cannot receive drawer pulses", row.Name))
		recommend("Device %q has no raw protocol path, so cash drawer commands and drawer tests will fail on it.", row.Name)
	}

	for _, row := range rep.Devices {
		if row.Status == device.StatusOffline {
			recommend("Device %q is listed by the system but reports offline.", row.Name)
		}
	}
	for _, m := range rep.Missing {
		if m.LastSeen.IsZero() {
			recommend("%q was present previously and is now absent. Reconnect it or clear the device history.", m.Name)
		} else {
			recommend("%q was present on %s and is now absent. Reconnect it or clear the device history.", m.Name, m.LastSeen.Format("2006-01-02"))
		}
	}

	if rep.Summary == "" {
		plural := "s"
		if len(rep.Devices) == 1 {
			plural = ""
		}
		rep.Summary = fmt.Sprintf("%d device%s ready, %d thermal", len(rep.Devices), plural, rep.ThermalCount)
	}
}

// receiptDefault resolves the device a receipt with no explicit target would
// land on: the configured default first, the system default otherwise.
func (r *Reporter) receiptDefault(rows []DeviceRow, s dispatch.Settings) (DeviceRow, bool) {
	if s.DefaultReceiptDevice != "" {
		for _, row := range rows {
			if row.Name == s.DefaultReceiptDevice {
				return row, true
			}
		}
		return DeviceRow{}, false
	}
	for _, row := range rows {
		if row.IsDefault {
			return row, true
		}
	}
	return DeviceRow{}, false
}

// rawCapable reports whether a device can take ESC/POS bytes: thermal
// printers always can, and USB, serial and network channels are raw by
// nature. A standard spooler printer only accepts rendered documents.
func rawCapable(d device.Descriptor) bool {
	return d.IsThermal || d.Transport != device.TransportSpooler
}

func hasDevice(rows []DeviceRow, name string) bool {
	for _, row := range rows {
		if row.Name == name {
			return true
		}
	}
	return false
}

// TestDevice pushes a small synthetic receipt through the normal dispatch
// path, so it exercises resolution, encoding and the fallback chain exactly
// like a sale would.
func (r *Reporter) TestDevice(ctx context.Context, name string) printjob.Result {
	now := time.Now()
	job := printjob.Job{
		Kind:         printjob.KindReceipt,
		TargetDevice: name,
		Receipt: &printjob.ReceiptPayload{
			Header: printjob.BusinessHeader{
				Name:  "PRINTER TEST",
				Lines: []string{"wilpos print agent"},
			},
			TicketNumber: now.Format("060102-150405"),
			Timestamp:    now.Format("2006-01-02 15:04:05"),
			Items: []printjob.LineItem{
				{Description: "Test line", Amount: "0.00"},
			},
			Footer: []string{"If this printed cleanly", "the device is working."},
		},
		Options: printjob.Options{CutPaper: true},
	}
	return r.dispatcher.Submit(ctx, job)
}

// TestDrawer fires a kick pulse at the named device
func (r *Reporter) TestDrawer(ctx context.Context, name string) printjob.Result {
	job := printjob.Job{
		Kind:         printjob.KindCashDrawer,
		TargetDevice: name,
		Drawer:       &printjob.DrawerPayload{},
	}
	return r.dispatcher.Submit(ctx, job)
}
