package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// handleStatus summarizes the agent state
// Usage: status
func (e *Executor) handleStatus(args []string) *Result {
	devices := e.core.Devices()
	thermal := 0
	for _, d := range devices {
		if d.IsThermal {
			thermal++
		}
	}
	jobs := e.core.JobHistory(0)

	return &Result{
		Success: true,
		Message: fmt.Sprintf("%d device(s), %d thermal, %d job(s) in history", len(devices), thermal, len(jobs)),
		Data: map[string]interface{}{
			"devices": len(devices),
			"thermal": thermal,
			"jobs":    len(jobs),
		},
	}
}

// handleDevices lists the current snapshot without touching hardware
// Usage: devices
func (e *Executor) handleDevices(args []string) *Result {
	devices := e.core.Devices()
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Found %d device(s)", len(devices)),
		Data: map[string]interface{}{
			"devices": devices,
		},
	}
}

// handleRefresh re-enumerates every source
// Usage: refresh
func (e *Executor) handleRefresh(ctx context.Context, args []string) *Result {
	devices := e.core.Refresh(ctx)
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Refreshed: %d device(s)", len(devices)),
		Data: map[string]interface{}{
			"devices": devices,
		},
	}
}

// handleTest prints a synthetic receipt on the named device
// Usage: test <device>
func (e *Executor) handleTest(ctx context.Context, args []string) *Result {
	name := strings.Join(args, " ")
	if name == "" {
		return &Result{
			Success: false,
			Error:   "usage: test <device>",
		}
	}

	res := e.core.TestDevice(ctx, name)
	if !res.Success {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("test print failed: %s", res.ErrorMessage),
			Data:    map[string]interface{}{"result": res},
		}
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Test receipt printed on %s via %s", res.Device, res.TransportUsed),
		Data:    map[string]interface{}{"result": res},
	}
}

// handleDrawer fires a kick pulse at the named device
// Usage: drawer <device>
func (e *Executor) handleDrawer(ctx context.Context, args []string) *Result {
	name := strings.Join(args, " ")
	if name == "" {
		return &Result{
			Success: false,
			Error:   "usage: drawer <device>",
		}
	}

	res := e.core.TestDrawer(ctx, name)
	if !res.Success {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("drawer pulse failed: %s", res.ErrorMessage),
			Data:    map[string]interface{}{"result": res},
		}
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Drawer pulse sent to %s", res.Device),
		Data:    map[string]interface{}{"result": res},
	}
}

// handleDiagnose runs the full diagnostic and returns both forms of the
// report: the text render as the message, the struct as data.
// Usage: diagnose
func (e *Executor) handleDiagnose(ctx context.Context, args []string) *Result {
	report := e.core.Diagnose(ctx)
	return &Result{
		Success: true,
		Message: report.Render(),
		Data: map[string]interface{}{
			"report": report,
		},
	}
}

// handleJobs lists recent submits, newest first
// Usage: jobs [n]
func (e *Executor) handleJobs(args []string) *Result {
	n := 10
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return &Result{
				Success: false,
				Error:   fmt.Sprintf("invalid count: %s", args[0]),
			}
		}
		n = parsed
	}

	jobs := e.core.JobHistory(n)
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Found %d job(s)", len(jobs)),
		Data: map[string]interface{}{
			"jobs": jobs,
		},
	}
}

// handleExport renders a sample receipt to PDF and reports where it landed
// Usage: export
func (e *Executor) handleExport(ctx context.Context, args []string) *Result {
	path, err := e.core.ExportTest(ctx)
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("export failed: %v", err),
		}
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Exported to %s", path),
		Data: map[string]interface{}{
			"file": path,
		},
	}
}

// handleHelp lists the available commands
func (e *Executor) handleHelp(args []string) *Result {
	helpText := `Available Commands:

  status
    Agent summary: devices, thermal count, job history size

  devices
    List the current device snapshot (no hardware access)

  refresh
    Re-enumerate spooler, USB, serial and network devices

  test <device>
    Print a synthetic test receipt on the named device

  drawer <device>
    Fire a cash drawer pulse at the named device

  diagnose
    Run the full diagnostic and show the report

  jobs [n]
    Show the n most recent print jobs (default 10)

  export
    Render a sample receipt to PDF in the export directory

  help
    Show this help message

Device names with spaces can be quoted:
  test "Microsoft Print to PDF"
`

	return &Result{
		Success: true,
		Message: helpText,
	}
}
