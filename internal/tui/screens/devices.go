package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
)

// DevicesView shows the current registry snapshot with per-device detail
type DevicesView struct {
	app      *tview.Application
	registry *device.Registry
	list     *tview.List
	details  *tview.TextView
	layout   *tview.Flex
	current  []device.Descriptor
}

// NewDevicesView creates the devices screen
func NewDevicesView(app *tview.Application, registry *device.Registry) *DevicesView {
	d := &DevicesView{
		app:      app,
		registry: registry,
	}

	d.setupUI()
	return d
}

func (d *DevicesView) setupUI() {
	d.list = tview.NewList()
	d.list.SetBorder(true)
	d.list.SetTitle("Devices")
	d.list.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		d.selectDevice(index)
	})

	d.details = tview.NewTextView()
	d.details.SetBorder(true)
	d.details.SetTitle("Device Details")
	d.details.SetDynamicColors(true)

	// Layout: List | Details
	d.layout = tview.NewFlex().
		AddItem(d.list, 0, 1, true).
		AddItem(d.details, 0, 2, false)

	d.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			return event // parent handles
		case tcell.KeyRune:
			if event.Rune() == 'r' {
				d.rescan()
				return nil
			}
		}
		return event
	})

	d.Reload()
}

// Reload repaints the list from the current snapshot without touching
// hardware.
func (d *DevicesView) Reload() {
	d.current = d.registry.Current()
	d.list.Clear()

	if len(d.current) == 0 {
		d.list.AddItem("No devices detected", "press 'r' to rescan", 0, nil)
		d.details.SetText("[yellow]No devices in the current snapshot[white]")
		return
	}

	for _, desc := range d.current {
		details := fmt.Sprintf("%s • %s", strings.ToUpper(string(desc.Transport)), className(desc))
		if desc.IsDefault {
			details += " • system default"
		}
		d.list.AddItem(fmt.Sprintf("%s %s", StatusIcon(desc.Status), desc.Name), details, 0, nil)
	}

	d.list.SetCurrentItem(0)
	d.selectDevice(0)
}

// rescan enumerates hardware and repaints
func (d *DevicesView) rescan() {
	d.registry.Refresh(context.Background())
	d.Reload()
}

func (d *DevicesView) selectDevice(index int) {
	if index < 0 || index >= len(d.current) {
		return
	}
	desc := d.current[index]

	var details strings.Builder
	details.WriteString(fmt.Sprintf("[yellow]Name:[white] %s\n", desc.Name))
	details.WriteString(fmt.Sprintf("[yellow]Transport:[white] %s\n", strings.ToUpper(string(desc.Transport))))
	details.WriteString(fmt.Sprintf("[yellow]Class:[white] %s\n", className(desc)))
	details.WriteString(fmt.Sprintf("[yellow]Status:[white] %s %s\n", StatusIcon(desc.Status), desc.Status))

	if desc.PortHint != "" {
		details.WriteString(fmt.Sprintf("[yellow]Port:[white] %s\n", desc.PortHint))
	}
	if desc.IsDefault {
		details.WriteString("[yellow]System default:[white] yes\n")
	}

	details.WriteString("\n[yellow]Press 'r' to rescan hardware[white]")

	d.details.SetText(details.String())
}

func className(desc device.Descriptor) string {
	if desc.IsThermal {
		return "thermal"
	}
	return "standard"
}

// StatusIcon maps a device status to its list marker
func StatusIcon(status device.Status) string {
	switch status {
	case device.StatusReady:
		return "🟢"
	case device.StatusOffline:
		return "🔴"
	default:
		return "⚪"
	}
}

// GetRoot returns the root primitive for this screen
func (d *DevicesView) GetRoot() tview.Primitive {
	return d.layout
}
