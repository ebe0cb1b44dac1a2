package diag

import (
	"fmt"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

// Render turns the report into the plain-text document attached to support
// tickets. It carries the same data as the struct, formatted for humans.
func (rep Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "PRINT DIAGNOSTIC REPORT\n")
	fmt.Fprintf(&b, "=======================\n")
	fmt.Fprintf(&b, "Generated: %s\n", rep.GeneratedAt.Format(timeLayout))
	if rep.Host != "" {
		fmt.Fprintf(&b, "Host:      %s\n", rep.Host)
	}
	if rep.AgentVersion != "" {
		fmt.Fprintf(&b, "Agent:     %s\n", rep.AgentVersion)
	}
	fmt.Fprintf(&b, "Severity:  %s\n", strings.ToUpper(string(rep.Severity)))
	fmt.Fprintf(&b, "Summary:   %s\n", rep.Summary)

	fmt.Fprintf(&b, "\nDevices (%d found, %d thermal):\n", len(rep.Devices), rep.ThermalCount)
	if len(rep.Devices) == 0 {
		fmt.Fprintf(&b, "  (none)\n")
	}
	nameW := 0
	for _, row := range rep.Devices {
		if len(row.Name) > nameW {
			nameW = len(row.Name)
		}
	}
	for _, row := range rep.Devices {
		class := "standard"
		if row.IsThermal {
			class = "thermal"
		}
		fmt.Fprintf(&b, "  %-*s  %-7s  %-8s  %-7s%s\n",
			nameW, row.Name, row.Transport, class, row.Status, deviceMarks(rep, row))
		if !row.LastSuccess.IsZero() {
			fmt.Fprintf(&b, "  %-*s  last successful print %s\n",
				nameW, "", row.LastSuccess.Format(timeLayout))
		}
	}

	if len(rep.Missing) > 0 {
		fmt.Fprintf(&b, "\nPreviously seen, now absent:\n")
		for _, m := range rep.Missing {
			if m.LastSeen.IsZero() {
				fmt.Fprintf(&b, "  - %s (%s)\n", m.Name, m.Transport)
			} else {
				fmt.Fprintf(&b, "  - %s (%s, last seen %s)\n", m.Name, m.Transport, m.LastSeen.Format(timeLayout))
			}
		}
	}

	if len(rep.Recommendations) > 0 {
		fmt.Fprintf(&b, "\nRecommendations:\n")
		for i, rec := range rep.Recommendations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, rec)
		}
	}

	return b.String()
}

// deviceMarks annotates a device row with its default roles
func deviceMarks(rep Report, row DeviceRow) string {
	var marks []string
	if row.Name == rep.DefaultReceipt {
		marks = append(marks, "default receipt")
	}
	if row.Name == rep.DefaultLabel {
		marks = append(marks, "default label")
	}
	if row.IsDefault {
		marks = append(marks, "system default")
	}
	if len(marks) == 0 {
		return ""
	}
	return "  [" + strings.Join(marks, ", ") + "]"
}
