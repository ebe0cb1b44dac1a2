package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
)

const jobScreenRows = 100

// JobsView shows the in-memory job log with per-entry detail
type JobsView struct {
	app     *tview.Application
	jobs    *joblog.Log
	table   *tview.Table
	details *tview.TextView
	layout  *tview.Flex
	current []joblog.Entry
}

// NewJobsView creates the jobs screen
func NewJobsView(app *tview.Application, jobs *joblog.Log) *JobsView {
	j := &JobsView{
		app:  app,
		jobs: jobs,
	}

	j.setupUI()
	return j
}

func (j *JobsView) setupUI() {
	j.table = tview.NewTable()
	j.table.SetBorder(true)
	j.table.SetTitle("Job History")
	j.table.SetSelectable(true, false)
	j.table.SetSelectedFunc(func(row, column int) {
		j.selectJob(row)
	})

	j.details = tview.NewTextView()
	j.details.SetBorder(true)
	j.details.SetTitle("Job Details")
	j.details.SetDynamicColors(true)

	// Layout: Table | Details
	j.layout = tview.NewFlex().
		AddItem(j.table, 0, 2, true).
		AddItem(j.details, 0, 1, false)

	j.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			return event // parent handles
		case tcell.KeyRune:
			if event.Rune() == 'r' {
				j.Reload()
				return nil
			}
		}
		return event
	})

	j.Reload()
}

// Reload repaints the table from the job log, newest first
func (j *JobsView) Reload() {
	j.current = j.jobs.Recent(jobScreenRows)
	j.table.Clear()

	headers := []string{"Status", "Device", "Kind", "Transport", "Age"}
	for col, h := range headers {
		j.table.SetCell(0, col, tview.NewTableCell(h).SetAlign(tview.AlignCenter).SetSelectable(false))
	}

	for i, entry := range j.current {
		row := i + 1
		res := entry.Result

		j.table.SetCell(row, 0, tview.NewTableCell(jobIcon(res.Success)+" "+jobStatus(res.Success)))
		j.table.SetCell(row, 1, tview.NewTableCell(res.Device))
		j.table.SetCell(row, 2, tview.NewTableCell(string(res.Kind)))
		j.table.SetCell(row, 3, tview.NewTableCell(string(res.TransportUsed)))

		age := time.Since(entry.CompletedAt).Truncate(time.Second).String()
		j.table.SetCell(row, 4, tview.NewTableCell(age))
	}

	if len(j.current) == 0 {
		j.details.SetText("[yellow]No jobs logged yet[white]")
	}
}

func (j *JobsView) selectJob(row int) {
	if row < 1 || row > len(j.current) {
		return
	}
	entry := j.current[row-1]
	res := entry.Result

	var details strings.Builder
	details.WriteString(fmt.Sprintf("[yellow]Job ID:[white] %s\n", entry.ID))
	details.WriteString(fmt.Sprintf("[yellow]Device:[white] %s\n", res.Device))
	details.WriteString(fmt.Sprintf("[yellow]Kind:[white] %s\n", res.Kind))
	details.WriteString(fmt.Sprintf("[yellow]Status:[white] %s %s\n", jobIcon(res.Success), jobStatus(res.Success)))

	if res.TransportUsed != "" {
		details.WriteString(fmt.Sprintf("[yellow]Transport:[white] %s\n", res.TransportUsed))
	}
	details.WriteString(fmt.Sprintf("[yellow]Completed:[white] %s\n", entry.CompletedAt.Format("2006-01-02 15:04:05")))

	if res.ErrorKind != "" {
		details.WriteString(fmt.Sprintf("\n[red]Error:[white] %s (%s)\n", tview.Escape(res.ErrorMessage), res.ErrorKind))
	}
	if log := res.AttemptLog(); log != "" {
		details.WriteString(fmt.Sprintf("\n[yellow]Attempts:[white] %s\n", tview.Escape(log)))
	}
	if res.ExportedFile != "" {
		details.WriteString(fmt.Sprintf("[yellow]Exported:[white] %s\n", res.ExportedFile))
	}

	details.WriteString("\n[yellow]Press 'r' to refresh[white]")

	j.details.SetText(details.String())
}

func jobIcon(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func jobStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// GetRoot returns the root primitive for this screen
func (j *JobsView) GetRoot() tview.Primitive {
	return j.layout
}
