package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
	"github.com/WILMAR-10/wilpos-print-agent/internal/render"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// agentCore backs the command executor with the live agent components.
type agentCore struct {
	registry *device.Registry
	reporter *diag.Reporter
	jobs     *joblog.Log
	exporter *render.PDFExporter
}

func (c *agentCore) Devices() []device.Descriptor {
	return c.registry.Current()
}

func (c *agentCore) Refresh(ctx context.Context) []device.Descriptor {
	return c.registry.Refresh(ctx)
}

func (c *agentCore) Diagnose(ctx context.Context) diag.Report {
	return c.reporter.Run(ctx)
}

func (c *agentCore) TestDevice(ctx context.Context, name string) printjob.Result {
	return c.reporter.TestDevice(ctx, name)
}

func (c *agentCore) TestDrawer(ctx context.Context, name string) printjob.Result {
	return c.reporter.TestDrawer(ctx, name)
}

func (c *agentCore) JobHistory(n int) []joblog.Entry {
	return c.jobs.Recent(n)
}

// ExportTest renders a sample receipt straight to PDF, bypassing device
// resolution: an export has no target device.
func (c *agentCore) ExportTest(ctx context.Context) (string, error) {
	if !c.exporter.Available() {
		return "", fmt.Errorf("no Chrome or Chromium binary found for PDF export")
	}

	now := time.Now()
	job := printjob.Job{
		Kind: printjob.KindReceipt,
		Receipt: &printjob.ReceiptPayload{
			Header: printjob.BusinessHeader{
				Name:  "EXPORT TEST",
				Lines: []string{"wilpos print agent"},
			},
			TicketNumber: now.Format("060102-150405"),
			Timestamp:    now.Format("2006-01-02 15:04:05"),
			Items: []printjob.LineItem{
				{Description: "Test line", Amount: "0.00"},
			},
			Totals: []printjob.TotalLine{
				{Label: "TOTAL", Amount: "0.00", Emphasis: true},
			},
			Footer: []string{"Rendered by the PDF export path."},
		},
	}
	return c.exporter.Export(ctx, job)
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

// buildTUILogger writes console-encoded lines into the switchable sink so
// the dashboard can capture them.
func buildTUILogger(level string, sink *logSink) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(sink), parseLevel(level))
	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// logSink forwards log lines to whichever writer is currently attached.
type logSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newLogSink() *logSink {
	return &logSink{out: os.Stderr}
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	out := s.out
	s.mu.Unlock()
	if out == nil {
		return len(p), nil
	}
	return out.Write(p)
}

func (s *logSink) Attach(w io.Writer) {
	s.mu.Lock()
	s.out = w
	s.mu.Unlock()
}
