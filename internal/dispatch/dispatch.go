// Package dispatch runs print jobs through an ordered fallback chain of
// transports. The chain is data, not branching: thermal devices try the raw
// protocol first and fall back to a rendered document, standard devices try
// the rendered document first and fall back to PDF export.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/render"
	"github.com/WILMAR-10/wilpos-print-agent/internal/transport"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

const (
	defaultAttemptTimeout = 10 * time.Second
	minAttemptTimeout     = 5 * time.Second
	maxAttemptTimeout     = 15 * time.Second
	defaultBackoff        = 300 * time.Millisecond
	maxTries              = 2
)

// Clock abstracts time so the retry engine is testable without real timers.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// EncodeDefaults are the layout settings applied when encoding for a device.
type EncodeDefaults struct {
	Columns    int    // zero picks 32 or 42 from the paper width
	CodePage   string // cp437, cp850, cp858
	PaperWidth string // 58mm, 80mm, 112mm
	LogoPath   string
}

// Settings are caller-owned values read fresh on every submit. The core
// never stores them; the settings file belongs to the application layer.
type Settings struct {
	DefaultReceiptDevice string
	DefaultLabelDevice   string
	AutoCut              bool
	AutoOpenDrawer       bool
	Encode               EncodeDefaults
	Devices              map[string]EncodeDefaults // per-device overrides
}

func (s Settings) encodeFor(name string) EncodeDefaults {
	enc := s.Encode
	if over, ok := s.Devices[name]; ok {
		if over.Columns != 0 {
			enc.Columns = over.Columns
		}
		if over.CodePage != "" {
			enc.CodePage = over.CodePage
		}
		if over.PaperWidth != "" {
			enc.PaperWidth = over.PaperWidth
		}
		if over.LogoPath != "" {
			enc.LogoPath = over.LogoPath
		}
	}
	if enc.PaperWidth == "" {
		enc.PaperWidth = "80mm"
	}
	if enc.Columns == 0 {
		if enc.PaperWidth == "58mm" {
			enc.Columns = 32
		} else {
			enc.Columns = 42
		}
	}
	return enc
}

// Config wires a Dispatcher.
type Config struct {
	Registry *device.Registry
	Drivers  transport.Drivers
	Exporter *render.PDFExporter
	Settings func() Settings       // read at submit time, may be nil
	Observer func(printjob.Result) // called once per completed submit
	Clock    Clock
	Logger   *zap.Logger
	// AttemptTimeout bounds one transport try; clamped to 5-15s.
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
}

// Dispatcher is the submit state machine. One per process; Submit is safe
// for concurrent use and serializes per device name.
type Dispatcher struct {
	registry       *device.Registry
	settings       func() Settings
	observer       func(printjob.Result)
	clock          Clock
	log            *zap.Logger
	locks          *lockTable
	strategies     map[printjob.TransportKind]strategy
	attemptTimeout time.Duration
	backoff        time.Duration
}

// New builds a Dispatcher from cfg, filling defaults for anything unset.
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	timeout := cfg.AttemptTimeout
	if timeout == 0 {
		timeout = defaultAttemptTimeout
	}
	if timeout < minAttemptTimeout {
		timeout = minAttemptTimeout
	}
	if timeout > maxAttemptTimeout {
		timeout = maxAttemptTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff == 0 {
		backoff = defaultBackoff
	}

	return &Dispatcher{
		registry: cfg.Registry,
		settings: cfg.Settings,
		observer: cfg.Observer,
		clock:    clock,
		log:      logger,
		locks:    newLockTable(),
		strategies: map[printjob.TransportKind]strategy{
			printjob.TransportRawProtocol:      &rawStrategy{drivers: cfg.Drivers},
			printjob.TransportRenderedDocument: &renderedStrategy{drivers: cfg.Drivers},
			printjob.TransportPdfExport:        &pdfStrategy{exporter: cfg.Exporter},
		},
		attemptTimeout: timeout,
		backoff:        backoff,
	}
}

// Submit runs one job to a terminal result. It never returns a Go error:
// every failure is classified into the result, and the caller decides what a
// failure means for the business action that triggered the print.
//
// ctx only governs the wait for the per-device lock. Once transmission has
// started the job runs to completion or attempt timeout; a half-written
// protocol stream leaves printers in states that need a power cycle.
func (d *Dispatcher) Submit(ctx context.Context, job printjob.Job) printjob.Result {
	res := printjob.Result{Kind: job.Kind, Device: job.TargetDevice}

	if err := printjob.Validate(&job); err != nil {
		return d.done(fail(res, printjob.ErrProtocolRejected, err.Error()))
	}
	printjob.Normalize(&job)

	var settings Settings
	if d.settings != nil {
		settings = d.settings()
	}

	desc, err := d.resolve(job, settings)
	if err != nil {
		return d.done(fail(res, printjob.KindOf(err), err.Error()))
	}
	res.Device = desc.Name

	if settings.AutoCut && (job.Kind == printjob.KindReceipt || job.Kind == printjob.KindLabel) {
		job.Options.CutPaper = true
	}
	if settings.AutoOpenDrawer && job.Kind == printjob.KindReceipt {
		job.Options.OpenDrawer = true
	}

	release, err := d.locks.acquire(ctx, desc.Name)
	if err != nil {
		return d.done(fail(res, printjob.ErrTimeout, "cancelled waiting for device: "+err.Error()))
	}
	defer release()

	enc := settings.encodeFor(desc.Name)
	chain := chainFor(job.Kind, desc.IsThermal)
	return d.done(d.runChain(desc, job, enc, chain, res))
}

// resolve picks the target device: explicit name, then the configured default
// for the job kind, then the system default printer.
func (d *Dispatcher) resolve(job printjob.Job, s Settings) (device.Descriptor, error) {
	if job.TargetDevice != "" {
		if desc, ok := d.registry.Find(job.TargetDevice); ok {
			return desc, nil
		}
		return device.Descriptor{}, printjob.NewError(printjob.ErrDeviceNotFound,
			fmt.Sprintf("device %q not in current snapshot; refresh and retry", job.TargetDevice))
	}

	name := s.DefaultReceiptDevice
	if job.Kind == printjob.KindLabel && s.DefaultLabelDevice != "" {
		name = s.DefaultLabelDevice
	}
	if name != "" {
		if desc, ok := d.registry.Find(name); ok {
			return desc, nil
		}
		return device.Descriptor{}, printjob.NewError(printjob.ErrDeviceNotFound,
			fmt.Sprintf("configured default %q not in current snapshot; refresh and retry", name))
	}

	if desc, ok := d.registry.Default(); ok {
		return desc, nil
	}
	return device.Descriptor{}, printjob.NewError(printjob.ErrNoDeviceConfigured,
		"no target device, configured default or system default printer")
}

// chainFor is the fallback chain as data. Drawer pulses only ever go raw:
// a pulse has no rendered form.
func chainFor(kind printjob.Kind, thermal bool) []printjob.TransportKind {
	if kind == printjob.KindCashDrawer {
		return []printjob.TransportKind{printjob.TransportRawProtocol}
	}
	if thermal {
		return []printjob.TransportKind{
			printjob.TransportRawProtocol,
			printjob.TransportRenderedDocument,
		}
	}
	return []printjob.TransportKind{
		printjob.TransportRenderedDocument,
		printjob.TransportPdfExport,
	}
}

func (d *Dispatcher) runChain(desc device.Descriptor, job printjob.Job, enc EncodeDefaults, chain []printjob.TransportKind, res printjob.Result) printjob.Result {
	var lastKind printjob.ErrorKind
	var lastMsg string

	for _, tk := range chain {
		strat := d.strategies[tk]
		out := d.runStrategy(strat, desc, job, enc, &res)
		if out.success {
			res.Success = true
			res.TransportUsed = tk
			res.ExportedFile = out.exportedFile
			return res
		}
		lastKind, lastMsg = out.kind, out.msg
	}

	res.Success = false
	res.ErrorKind = lastKind
	res.ErrorMessage = lastMsg
	return res
}

type strategyOutcome struct {
	success      bool
	exportedFile string
	kind         printjob.ErrorKind
	msg          string
}

// runStrategy drives one transport tier through the bounded-retry state
// machine: try, then either done, retry after backoff, or advance.
func (d *Dispatcher) runStrategy(strat strategy, desc device.Descriptor, job printjob.Job, enc EncodeDefaults, res *printjob.Result) strategyOutcome {
	for try := 1; ; try++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.attemptTimeout)
		start := d.clock.Now()
		exported, err := strat.execute(ctx, desc, job, enc)
		cancel()
		elapsed := d.clock.Now().Sub(start)

		attempt := printjob.Attempt{Transport: strat.kind(), Try: try, Elapsed: elapsed}
		if err == nil {
			res.Attempts = append(res.Attempts, attempt)
			return strategyOutcome{success: true, exportedFile: exported}
		}

		kind := publicKind(err)
		attempt.ErrorKind = kind
		attempt.Error = err.Error()
		res.Attempts = append(res.Attempts, attempt)

		d.log.Warn("print attempt failed",
			zap.String("device", desc.Name),
			zap.String("transport", string(strat.kind())),
			zap.Int("try", try),
			zap.String("error_kind", string(kind)),
			zap.Error(err))

		if !retryable(err) || try >= maxTries {
			return strategyOutcome{kind: kind, msg: err.Error()}
		}
		d.clock.Sleep(d.backoff)
	}
}

// publicKind maps any error onto the result taxonomy. Timeouts come from the
// attempt context; unclassified transport failures surface as the channel
// being unavailable.
func publicKind(err error) printjob.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return printjob.ErrTimeout
	}
	if k := printjob.KindOf(err); k != "" {
		return k
	}
	return printjob.ErrTransportUnavailable
}

// retryable: timeouts and unclassified write errors earn another try on the
// same transport; classified failures advance the chain immediately.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	k := printjob.KindOf(err)
	return k == "" || k == printjob.ErrTimeout
}

func fail(res printjob.Result, kind printjob.ErrorKind, msg string) printjob.Result {
	res.Success = false
	res.ErrorKind = kind
	res.ErrorMessage = msg
	return res
}

func (d *Dispatcher) done(res printjob.Result) printjob.Result {
	if res.Success {
		d.log.Info("print job completed",
			zap.String("device", res.Device),
			zap.String("kind", string(res.Kind)),
			zap.String("transport", string(res.TransportUsed)))
	} else {
		d.log.Warn("print job failed",
			zap.String("device", res.Device),
			zap.String("kind", string(res.Kind)),
			zap.String("error_kind", string(res.ErrorKind)),
			zap.String("attempts", res.AttemptLog()))
	}
	if d.observer != nil {
		d.observer(res)
	}
	return res
}
