package screens

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
)

// DiagnosticsView runs the diagnostic reporter and shows the rendered report.
// Opening the screen or pressing 'r' runs a fresh probe.
type DiagnosticsView struct {
	app      *tview.Application
	reporter *diag.Reporter
	text     *tview.TextView
}

// NewDiagnosticsView creates the diagnostics screen
func NewDiagnosticsView(app *tview.Application, reporter *diag.Reporter) *DiagnosticsView {
	d := &DiagnosticsView{
		app:      app,
		reporter: reporter,
	}

	d.text = tview.NewTextView()
	d.text.SetBorder(true)
	d.text.SetTitle("Diagnostics")
	d.text.SetDynamicColors(true)
	d.text.SetScrollable(true)

	d.text.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'r' {
			d.Rerun()
			return nil
		}
		return event
	})

	return d
}

// Rerun probes the devices again and repaints the report
func (d *DiagnosticsView) Rerun() {
	report := d.reporter.Run(context.Background())

	marker := "[green]"
	switch report.Severity {
	case diag.SeverityWarning:
		marker = "[yellow]"
	case diag.SeverityError:
		marker = "[red]"
	}

	// The rendered report uses square brackets; escape so tview does not
	// read them as color tags.
	body := tview.Escape(report.Render())
	d.text.SetText(marker + string(report.Severity) + "[white]\n\n" + body + "\n[yellow]Press 'r' to run again[white]")
	d.text.ScrollToBeginning()
}

// GetRoot returns the root primitive for this screen
func (d *DiagnosticsView) GetRoot() tview.Primitive {
	return d.text
}
