package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	accentColor  = lipgloss.Color("#06B6D4")
	mutedColor   = lipgloss.Color("#6B7280")
	brightColor  = lipgloss.Color("#F8FAFC")

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	badgeStyle = lipgloss.NewStyle().Bold(true).Foreground(brightColor).Padding(0, 1)
)

func severityBadge(severity string) string {
	switch severity {
	case "success":
		return badgeStyle.Background(successColor).Render("OK")
	case "warning":
		return badgeStyle.Background(warningColor).Render("WARNING")
	case "error":
		return badgeStyle.Background(errorColor).Render("ERROR")
	}
	return severity
}

func statusDot(status string) string {
	switch status {
	case "ready":
		return successStyle.Render("●")
	case "offline":
		return errorStyle.Render("●")
	}
	return warningStyle.Render("●")
}

// renderDevice formats one descriptor map from the agent response
func renderDevice(dev map[string]interface{}) string {
	name := asString(dev, "name")
	transport := strings.ToUpper(asString(dev, "transport"))

	class := "standard"
	if asBool(dev, "is_thermal") {
		class = "thermal"
	}

	line := fmt.Sprintf("  %s %s  %s", statusDot(asString(dev, "status")), name,
		mutedStyle.Render(transport+" • "+class))
	if asBool(dev, "is_default") {
		line += " " + mutedStyle.Render("• system default")
	}
	return line
}

// renderJob formats one job log entry map from the agent response
func renderJob(job map[string]interface{}) string {
	res, _ := job["result"].(map[string]interface{})
	if res == nil {
		res = map[string]interface{}{}
	}

	mark := errorStyle.Render("✗")
	if asBool(res, "success") {
		mark = successStyle.Render("✓")
	}

	line := fmt.Sprintf("  %s %s  %s", mark, asString(res, "device"),
		mutedStyle.Render(asString(res, "kind")))
	if t := asString(res, "transport_used"); t != "" {
		line += " " + mutedStyle.Render("via "+t)
	}
	if e := asString(res, "error_message"); e != "" {
		line += " " + errorStyle.Render(e)
	}
	return line
}

// renderAttempts lists the fallback attempts of a print result, when the
// agent included them.
func renderAttempts(res map[string]interface{}) string {
	attempts, ok := res["attempts"].([]interface{})
	if !ok || len(attempts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render("Attempts:"))
	for _, a := range attempts {
		att, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		line := fmt.Sprintf("\n  %s try %.0f", asString(att, "transport"), att["try"])
		if e := asString(att, "error"); e != "" {
			line += ": " + e
		} else {
			line += ": ok"
		}
		b.WriteString(mutedStyle.Render(line))
	}
	return b.String()
}

// renderReport formats the diagnostic report with severity coloring
func renderReport(report map[string]interface{}) string {
	var b strings.Builder

	b.WriteString(severityBadge(asString(report, "severity")))
	b.WriteString(" ")
	b.WriteString(asString(report, "summary"))
	b.WriteString("\n")

	meta := make([]string, 0, 3)
	if host := asString(report, "host"); host != "" {
		meta = append(meta, host)
	}
	if v := asString(report, "agent_version"); v != "" {
		meta = append(meta, "agent "+v)
	}
	if t := asString(report, "generated_at"); t != "" {
		meta = append(meta, t)
	}
	if len(meta) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(meta, " • ")))
		b.WriteString("\n")
	}

	if devices, ok := report["devices"].([]interface{}); ok && len(devices) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Devices"))
		b.WriteString("\n")
		for _, d := range devices {
			if dev, ok := d.(map[string]interface{}); ok {
				b.WriteString(renderDevice(dev))
				b.WriteString("\n")
			}
		}
	}

	if missing, ok := report["missing"].([]interface{}); ok && len(missing) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Previously seen, now absent"))
		b.WriteString("\n")
		for _, m := range missing {
			if dev, ok := m.(map[string]interface{}); ok {
				line := "  " + asString(dev, "name")
				if t := asString(dev, "transport"); t != "" {
					line += " " + mutedStyle.Render("("+t+")")
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	if recs, ok := report["recommendations"].([]interface{}); ok && len(recs) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Recommendations"))
		b.WriteString("\n")
		for i, r := range recs {
			if rec, ok := r.(string); ok {
				b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, rec))
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
