// Package tui is the operator dashboard that runs alongside the agent API.
// Panels repaint from in-memory snapshots; hardware is only touched on an
// explicit rescan (keybinding or command).
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/WILMAR-10/wilpos-print-agent/internal/command"
	"github.com/WILMAR-10/wilpos-print-agent/internal/config"
	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
	"github.com/WILMAR-10/wilpos-print-agent/internal/tui/screens"
)

const (
	maxDashboardJobs = 20
	maxLogLines      = 100
)

// Config wires the dashboard to the running agent.
type Config struct {
	Registry *device.Registry
	Jobs     *joblog.Log
	Reporter *diag.Reporter
	Settings *config.Store
	Executor *command.Executor
	Port     string
	Version  string
}

// App is the tview application: a main dashboard plus full-screen views for
// devices, jobs, diagnostics and settings.
type App struct {
	App *tview.Application

	registry *device.Registry
	jobs     *joblog.Log
	exec     *command.Executor
	port     string
	version  string

	flex *tview.Flex

	devicesList  *tview.List
	jobsTable    *tview.Table
	statusBox    *tview.TextView
	logsArea     *tview.TextView
	commandInput *tview.InputField

	startTime time.Time

	currentScreen     string // "main", "devices", "jobs", "diagnostics", "settings"
	devicesScreen     *screens.DevicesView
	jobsScreen        *screens.JobsView
	diagnosticsScreen *screens.DiagnosticsView
	settingsScreen    *screens.SettingsView
}

// New builds the dashboard. It does not start the event loop; call Run.
func New(cfg Config) *App {
	app := tview.NewApplication()

	t := &App{
		App:           app,
		registry:      cfg.Registry,
		jobs:          cfg.Jobs,
		exec:          cfg.Executor,
		port:          cfg.Port,
		version:       cfg.Version,
		startTime:     time.Now(),
		currentScreen: "main",
	}

	t.setupUI()
	t.devicesScreen = screens.NewDevicesView(app, cfg.Registry)
	t.jobsScreen = screens.NewJobsView(app, cfg.Jobs)
	t.diagnosticsScreen = screens.NewDiagnosticsView(app, cfg.Reporter)
	t.settingsScreen = screens.NewSettingsView(app, cfg.Registry, cfg.Settings)
	return t
}

func (t *App) setupUI() {
	t.devicesList = tview.NewList()
	t.devicesList.SetBorder(true)
	t.devicesList.SetTitle("Devices")

	t.jobsTable = tview.NewTable()
	t.jobsTable.SetBorder(true)
	t.jobsTable.SetTitle("Recent Jobs")

	t.statusBox = tview.NewTextView()
	t.statusBox.SetBorder(true)
	t.statusBox.SetTitle("Agent Status")
	t.statusBox.SetDynamicColors(true)

	// Non-scrollable keeps the last line visible, so concurrent writers only
	// need the thread-safe TextView.Write path.
	t.logsArea = tview.NewTextView()
	t.logsArea.SetBorder(true)
	t.logsArea.SetTitle("Log")
	t.logsArea.SetDynamicColors(true)
	t.logsArea.SetMaxLines(maxLogLines)
	t.logsArea.SetScrollable(false)
	t.logsArea.SetChangedFunc(func() {
		t.App.Draw()
	})

	t.commandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0).
		SetPlaceholder("Type a command (e.g., 'help')").
		SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				t.executeCommand(t.commandInput.GetText())
				t.commandInput.SetText("")
			}
		})

	topRow := tview.NewFlex().
		AddItem(t.devicesList, 0, 1, false).
		AddItem(t.jobsTable, 0, 1, false).
		AddItem(t.statusBox, 0, 1, false)

	bottom := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.logsArea, 0, 3, false).
		AddItem(t.commandInput, 1, 0, true)

	t.flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, false).
		AddItem(bottom, 0, 1, false)

	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.currentScreen != "main" {
			if event.Key() == tcell.KeyEsc {
				t.showMainScreen()
				return nil
			}
			return event
		}

		if t.commandInput.HasFocus() {
			if event.Key() == tcell.KeyEsc {
				t.App.SetFocus(t.devicesList)
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			t.App.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ':':
				t.App.SetFocus(t.commandInput)
				return nil
			case 'q':
				t.App.Stop()
				return nil
			case 'r':
				t.rescan()
				return nil
			case 'd':
				t.showScreen("devices")
				return nil
			case 'j':
				t.showScreen("jobs")
				return nil
			case 'g':
				t.showScreen("diagnostics")
				return nil
			case 's':
				t.showScreen("settings")
				return nil
			}
		}
		return event
	})

	t.App.SetRoot(t.flex, true)
}

// Run starts the TUI event loop and blocks until the app stops.
func (t *App) Run() error {
	t.refreshAll()

	go t.refreshTicker()

	t.AddLog(fmt.Sprintf("wilpos print agent %s listening on :%s", t.version, t.port), "info")
	t.AddLog("type 'help' for commands", "info")

	return t.App.Run()
}

// Stop ends the event loop. Safe to call from any goroutine.
func (t *App) Stop() {
	t.App.Stop()
}

// refreshTicker repaints the dashboard panels from snapshots. It never
// enumerates hardware.
func (t *App) refreshTicker() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		t.App.QueueUpdateDraw(func() {
			t.refreshAll()
		})
	}
}

func (t *App) refreshAll() {
	t.refreshDevices()
	t.refreshJobs()
	t.refreshStatus()
}

func (t *App) refreshDevices() {
	t.devicesList.Clear()

	devices := t.registry.Current()
	if len(devices) == 0 {
		t.devicesList.AddItem("No devices detected", "press 'r' to rescan", 0, nil)
		return
	}

	for _, d := range devices {
		name := d.Name
		if d.IsDefault {
			name += " *"
		}

		class := "standard"
		if d.IsThermal {
			class = "thermal"
		}
		details := fmt.Sprintf("%s • %s", strings.ToUpper(string(d.Transport)), class)

		t.devicesList.AddItem(fmt.Sprintf("%s %s", screens.StatusIcon(d.Status), name), details, 0, nil)
	}
}

func (t *App) refreshJobs() {
	t.jobsTable.Clear()

	t.jobsTable.SetCell(0, 0, tview.NewTableCell("Status").SetAlign(tview.AlignCenter).SetSelectable(false))
	t.jobsTable.SetCell(0, 1, tview.NewTableCell("Device").SetAlign(tview.AlignCenter).SetSelectable(false))
	t.jobsTable.SetCell(0, 2, tview.NewTableCell("Kind").SetAlign(tview.AlignCenter).SetSelectable(false))
	t.jobsTable.SetCell(0, 3, tview.NewTableCell("Age").SetAlign(tview.AlignCenter).SetSelectable(false))

	entries := t.jobs.Recent(maxDashboardJobs)

	ok := 0
	failed := 0
	for i, entry := range entries {
		row := i + 1
		res := entry.Result

		status := "✅ ok"
		if !res.Success {
			status = "❌ failed"
		}

		t.jobsTable.SetCell(row, 0, tview.NewTableCell(status))
		t.jobsTable.SetCell(row, 1, tview.NewTableCell(res.Device))
		t.jobsTable.SetCell(row, 2, tview.NewTableCell(string(res.Kind)))

		age := time.Since(entry.CompletedAt).Truncate(time.Second).String()
		t.jobsTable.SetCell(row, 3, tview.NewTableCell(age))

		if res.Success {
			ok++
		} else {
			failed++
		}
	}

	if len(entries) > 0 {
		summaryRow := len(entries) + 1
		summary := fmt.Sprintf("[%d] OK [%d] Failed", ok, failed)
		cell := tview.NewTableCell(summary)
		cell.SetSelectable(false)
		t.jobsTable.SetCell(summaryRow, 0, cell)
	}
}

func (t *App) refreshStatus() {
	uptime := time.Since(t.startTime)
	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60

	devices := t.registry.Current()
	thermal := 0
	for _, d := range devices {
		if d.IsThermal {
			thermal++
		}
	}

	status := fmt.Sprintf(`[green]🟢 Running[white]

Version: %s
Uptime: %dh %dm
API: :%s
Devices: %d (%d thermal)
Jobs: %d logged`, t.version, hours, minutes, t.port, len(devices), thermal, t.jobs.Len())

	t.statusBox.SetText(status)
}

// rescan enumerates hardware once and repaints.
func (t *App) rescan() {
	devices := t.registry.Refresh(context.Background())
	t.AddLog(fmt.Sprintf("rescan found %d device(s)", len(devices)), "info")
	t.refreshAll()
}

// executeCommand routes a command line through the shared executor. The
// executor runs off the event loop so a slow test print cannot freeze the UI.
func (t *App) executeCommand(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	t.AddLog("> "+line, "command")

	switch strings.ToLower(strings.Fields(line)[0]) {
	case "clear":
		t.logsArea.Clear()
		return
	case "quit", "exit":
		t.App.Stop()
		return
	case "rescan":
		t.rescan()
		return
	case "help", "h", "?":
		res := t.exec.Execute(context.Background(), "help")
		t.AddLog(res.Message, "info")
		t.showKeys()
		return
	}

	go func() {
		res := t.exec.Execute(context.Background(), line)
		t.App.QueueUpdateDraw(func() {
			if res.Error != "" {
				t.AddLog(res.Error, "error")
			} else if res.Message != "" {
				t.AddLog(res.Message, "info")
			}
			t.refreshAll()
		})
	}()
}

func (t *App) showKeys() {
	keys := []string{
		"Keyboard:",
		"  : - command input   r - rescan devices",
		"  d - devices   j - jobs   g - diagnostics   s - settings",
		"  Esc - back   q - quit",
	}
	t.AddLog(strings.Join(keys, "\n"), "info")
}

func (t *App) showScreen(screenName string) {
	t.currentScreen = screenName

	switch screenName {
	case "devices":
		t.devicesScreen.Reload()
		t.App.SetRoot(t.devicesScreen.GetRoot(), true)
		t.App.SetFocus(t.devicesScreen.GetRoot())
	case "jobs":
		t.jobsScreen.Reload()
		t.App.SetRoot(t.jobsScreen.GetRoot(), true)
		t.App.SetFocus(t.jobsScreen.GetRoot())
	case "diagnostics":
		t.diagnosticsScreen.Rerun()
		t.App.SetRoot(t.diagnosticsScreen.GetRoot(), true)
		t.App.SetFocus(t.diagnosticsScreen.GetRoot())
	case "settings":
		t.settingsScreen.Reload()
		t.App.SetRoot(t.settingsScreen.GetRoot(), true)
		t.App.SetFocus(t.settingsScreen.GetRoot())
	case "main":
		t.showMainScreen()
	}
}

func (t *App) showMainScreen() {
	t.currentScreen = "main"
	t.refreshAll()
	t.App.SetRoot(t.flex, true)
	t.App.SetFocus(t.devicesList)
}

// AddLog appends a line to the log panel. Safe from any goroutine.
func (t *App) AddLog(message string, level string) {
	var color string
	switch level {
	case "error":
		color = "[red]"
	case "warning":
		color = "[yellow]"
	case "command":
		color = "[cyan]"
	default:
		color = "[white]"
	}

	timeStr := time.Now().Format("15:04:05")
	fmt.Fprintf(t.logsArea, "%s[%s] %s[white]\n", color, timeStr, tview.Escape(message))
}

// LogWriter adapts the log panel into an io.Writer, so the agent logger can
// tee into the dashboard.
func (t *App) LogWriter() io.Writer {
	return &logWriter{app: t}
}

type logWriter struct {
	app *App
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message != "" {
		w.app.AddLog(message, "info")
	}
	return len(p), nil
}
