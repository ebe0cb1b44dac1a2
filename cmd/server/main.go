// The wilpos print agent daemon: discovers printers, serves the print API
// and WebSocket event stream, and optionally runs the operator dashboard.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/WILMAR-10/wilpos-print-agent/internal/api"
	"github.com/WILMAR-10/wilpos-print-agent/internal/command"
	"github.com/WILMAR-10/wilpos-print-agent/internal/config"
	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
	"github.com/WILMAR-10/wilpos-print-agent/internal/dispatch"
	"github.com/WILMAR-10/wilpos-print-agent/internal/hub"
	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
	"github.com/WILMAR-10/wilpos-print-agent/internal/render"
	"github.com/WILMAR-10/wilpos-print-agent/internal/transport"
	"github.com/WILMAR-10/wilpos-print-agent/internal/tui"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// In TUI mode the terminal belongs to tview while the dashboard runs, so
	// log lines are routed through a switchable sink: stderr on startup, the
	// dashboard panel once it exists, stderr again after it exits.
	var sink *logSink
	var logger *zap.Logger
	if cfg.TUI {
		sink = newLogSink()
		logger = buildTUILogger(cfg.LogLevel, sink)
	} else {
		logger, err = buildLogger(cfg.LogLevel)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}
	defer logger.Sync()

	store, err := config.NewStore(cfg.SettingsPath)
	if err != nil {
		logger.Fatal("Failed to load settings", zap.String("path", cfg.SettingsPath), zap.Error(err))
	}

	seen, err := device.NewSeenStore(cfg.SeenPath)
	if err != nil {
		logger.Warn("Seen-devices history unavailable", zap.String("path", cfg.SeenPath), zap.Error(err))
		seen = nil
	}

	network := device.NewNetworkSource(store.Current().NetworkDevices)

	registry := device.NewRegistry(device.RegistryConfig{
		Sources: []device.Source{
			device.NewSpoolerSource(),
			device.NewUSBSource(),
			device.NewSerialSource(),
			network,
		},
		Overrides: func() device.Overrides { return store.Current().Overrides() },
		Seen:      seen,
		Logger:    logger,
	})

	jobs := joblog.New(200)
	wsHub := hub.New(logger)

	exporter := &render.PDFExporter{
		ChromePath: cfg.ChromePath,
		ExportDir:  cfg.ExportDir,
	}

	dispatcher := dispatch.New(dispatch.Config{
		Registry: registry,
		Drivers:  transport.NewDrivers(),
		Exporter: exporter,
		Settings: func() dispatch.Settings { return store.Current().Dispatch() },
		Observer: func(res printjob.Result) {
			jobs.Add(res)
			wsHub.BroadcastJobResult(res)
		},
		Logger:         logger,
		AttemptTimeout: cfg.AttemptTimeout,
		RetryBackoff:   cfg.RetryBackoff,
	})

	reporter := diag.New(diag.Config{
		Registry:   registry,
		Seen:       seen,
		Dispatcher: dispatcher,
		Settings:   func() dispatch.Settings { return store.Current().Dispatch() },
		Version:    Version,
		Logger:     logger,
	})

	core := &agentCore{
		registry: registry,
		reporter: reporter,
		jobs:     jobs,
		exporter: exporter,
	}
	executor := command.NewExecutor(core)

	server := api.NewServer(api.Config{
		Registry:   registry,
		Network:    network,
		Dispatcher: dispatcher,
		Reporter:   reporter,
		Jobs:       jobs,
		Hub:        wsHub,
		Executor:   executor,
		Settings:   store,
		Version:    Version,
		Logger:     logger,
	})

	devices := registry.Refresh(context.Background())
	logger.Info("Initial device scan",
		zap.Int("devices", len(devices)),
		zap.Int("thermal", countThermal(devices)))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: server.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting agent API", zap.Int("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.TUI {
		dashboard := tui.New(tui.Config{
			Registry: registry,
			Jobs:     jobs,
			Reporter: reporter,
			Settings: store,
			Executor: executor,
			Port:     strconv.Itoa(cfg.Port),
			Version:  Version,
		})
		sink.Attach(dashboard.LogWriter())

		tuiDone := make(chan struct{})
		go func() {
			if err := dashboard.Run(); err != nil {
				logger.Error("Dashboard failed", zap.Error(err))
			}
			close(tuiDone)
		}()

		select {
		case err := <-serverErr:
			dashboard.Stop()
			<-tuiDone
			sink.Attach(os.Stderr)
			logger.Fatal("Agent API failed", zap.Error(err))
		case <-quit:
			dashboard.Stop()
			<-tuiDone
		case <-tuiDone:
		}
		// The terminal is restored; shutdown logs go to stderr again.
		sink.Attach(os.Stderr)
	} else {
		select {
		case err := <-serverErr:
			logger.Fatal("Agent API failed", zap.Error(err))
		case <-quit:
		}
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	wsHub.Close()

	logger.Info("Shutdown complete")
}

func countThermal(devices []device.Descriptor) int {
	n := 0
	for _, d := range devices {
		if d.IsThermal {
			n++
		}
	}
	return n
}
