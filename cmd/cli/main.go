// wilpos-cli talks to a running print agent over HTTP. Every command maps
// onto the agent's command endpoint; the CLI only renders the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const defaultAgentURL = "http://localhost:9123"

func main() {
	var agentURL string
	flag.StringVar(&agentURL, "agent", defaultAgentURL, "Agent URL")
	flag.StringVar(&agentURL, "a", defaultAgentURL, "Agent URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	command := strings.Join(flag.Args(), " ")
	result := executeCommand(agentURL, command)

	if result.Success {
		printSuccess(result)
		os.Exit(0)
	}
	printError(result)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `wilpos print agent CLI

Usage:
  wilpos-cli [flags] <command>

Flags:
  -a, -agent <url>    Agent URL (default: %s)

Commands:
  status
    Show device and job counts

  devices
    List the current device snapshot

  refresh
    Rescan all device sources

  test <device>
    Print a synthetic test receipt on the named device

  drawer <device>
    Fire a cash drawer pulse at the named device

  diagnose
    Run the full diagnostic and show the report

  jobs [n]
    List recent jobs, newest first (default 10)

  export
    Render a sample receipt to PDF and report the file path

  help
    Show the agent's command help

Device names with spaces need quotes:
  wilpos-cli test "EPSON TM-T20III"

Examples:
  wilpos-cli devices
  wilpos-cli diagnose
  wilpos-cli test POS-80
  wilpos-cli -a http://192.168.1.50:9123 status

`, defaultAgentURL)
}

// CommandResult mirrors the agent's command response shape
type CommandResult struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// executeCommand posts one command line to the agent. Failed commands come
// back with a non-2xx status and the same result shape, so the body is
// parsed regardless of the code.
func executeCommand(agentURL, command string) *CommandResult {
	url := strings.TrimSuffix(agentURL, "/") + "/api/command"

	reqBody, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return &CommandResult{Success: false, Error: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		return &CommandResult{Success: false, Error: fmt.Sprintf("failed to connect to agent: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CommandResult{Success: false, Error: fmt.Sprintf("failed to read response: %v", err)}
	}

	var result CommandResult
	if err := json.Unmarshal(body, &result); err != nil {
		return &CommandResult{Success: false, Error: fmt.Sprintf("failed to parse response: %v", err)}
	}
	return &result
}

func printSuccess(result *CommandResult) {
	// The diagnostic report gets its own rendering; the raw text message
	// would just duplicate it.
	if report, ok := result.Data["report"].(map[string]interface{}); ok {
		fmt.Println(renderReport(report))
		return
	}

	if result.Message != "" {
		fmt.Println(result.Message)
	}

	if devices, ok := result.Data["devices"].([]interface{}); ok {
		fmt.Println()
		for _, d := range devices {
			if dev, ok := d.(map[string]interface{}); ok {
				fmt.Println(renderDevice(dev))
			}
		}
	}

	if jobs, ok := result.Data["jobs"].([]interface{}); ok {
		fmt.Println()
		for _, j := range jobs {
			if job, ok := j.(map[string]interface{}); ok {
				fmt.Println(renderJob(job))
			}
		}
	}

	if res, ok := result.Data["result"].(map[string]interface{}); ok {
		if attempts := renderAttempts(res); attempts != "" {
			fmt.Println(attempts)
		}
	}
}

func printError(result *CommandResult) {
	msg := result.Error
	if msg == "" {
		msg = result.Message
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+msg)

	if res, ok := result.Data["result"].(map[string]interface{}); ok {
		if attempts := renderAttempts(res); attempts != "" {
			fmt.Fprintln(os.Stderr, attempts)
		}
	}
}

func asString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func asBool(m map[string]interface{}, key string) bool {
	v, ok := m[key].(bool)
	return ok && v
}
