// Package command implements the one-line operator commands shared by the
// TUI input box, the /api/command endpoint and the CLI.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Core is the agent functionality commands drive. The daemon passes its real
// components wrapped in one struct; tests pass a fake.
type Core interface {
	Devices() []device.Descriptor
	Refresh(ctx context.Context) []device.Descriptor
	Diagnose(ctx context.Context) diag.Report
	TestDevice(ctx context.Context, name string) printjob.Result
	TestDrawer(ctx context.Context, name string) printjob.Result
	JobHistory(n int) []joblog.Entry
	ExportTest(ctx context.Context) (string, error)
}

// Executor routes command lines to the core
type Executor struct {
	core Core
}

func NewExecutor(core Core) *Executor {
	return &Executor{core: core}
}

// Result is what every command returns
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Execute parses and runs one command line
func (e *Executor) Execute(ctx context.Context, cmdStr string) *Result {
	parts := parseCommand(cmdStr)
	if len(parts) == 0 {
		return &Result{
			Success: false,
			Error:   "empty command",
		}
	}

	verb := parts[0]
	args := parts[1:]

	switch verb {
	case "status":
		return e.handleStatus(args)
	case "devices":
		return e.handleDevices(args)
	case "refresh":
		return e.handleRefresh(ctx, args)
	case "test":
		return e.handleTest(ctx, args)
	case "drawer":
		return e.handleDrawer(ctx, args)
	case "diagnose":
		return e.handleDiagnose(ctx, args)
	case "jobs":
		return e.handleJobs(args)
	case "export":
		return e.handleExport(ctx, args)
	case "help":
		return e.handleHelp(args)
	default:
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("unknown command: %s. Type 'help' for available commands", verb),
		}
	}
}

// parseCommand splits a command line into parts, honoring quoted strings so
// device names with spaces survive.
func parseCommand(cmdStr string) []string {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return []string{}
	}

	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := byte(0)

	for i := 0; i < len(cmdStr); i++ {
		char := cmdStr[i]

		if char == '"' || char == '\'' {
			if !inQuotes {
				inQuotes = true
				quoteChar = char
			} else if char == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else {
				current.WriteByte(char)
			}
		} else if char == ' ' && !inQuotes {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(char)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
