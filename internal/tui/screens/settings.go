package screens

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/WILMAR-10/wilpos-print-agent/internal/config"
	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
)

// SettingsView edits the persisted agent settings: default devices and the
// automatic cut and drawer flags. Selecting a device in the list fills the
// receipt default field.
type SettingsView struct {
	app      *tview.Application
	registry *device.Registry
	store    *config.Store
	list     *tview.List
	details  *tview.TextView
	form     *tview.Form
	layout   *tview.Flex
	current  []device.Descriptor
}

// NewSettingsView creates the settings screen
func NewSettingsView(app *tview.Application, registry *device.Registry, store *config.Store) *SettingsView {
	s := &SettingsView{
		app:      app,
		registry: registry,
		store:    store,
	}

	s.setupUI()
	return s
}

func (s *SettingsView) setupUI() {
	s.list = tview.NewList()
	s.list.SetBorder(true)
	s.list.SetTitle("Devices")
	s.list.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		s.pickDevice(index)
	})

	s.details = tview.NewTextView()
	s.details.SetBorder(true)
	s.details.SetTitle("Current Settings")
	s.details.SetDynamicColors(true)

	s.form = tview.NewForm()
	s.form.SetBorder(true)
	s.form.SetTitle("Edit Settings")
	s.form.AddInputField("Default receipt device", "", 30, nil, nil)
	s.form.AddInputField("Default label device", "", 30, nil, nil)
	s.form.AddCheckbox("Auto cut", true, nil)
	s.form.AddCheckbox("Auto open drawer", false, nil)
	s.form.AddButton("Save", func() {
		s.save()
	})
	s.form.AddButton("Reload", func() {
		s.Reload()
	})

	// Layout: List | Details + Form
	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(s.details, 0, 1, false).
		AddItem(s.form, 0, 2, true)

	s.layout = tview.NewFlex().
		AddItem(s.list, 0, 1, true).
		AddItem(rightPanel, 0, 2, false)

	s.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			return event // parent handles
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r':
				s.Reload()
				return nil
			case 'e':
				s.app.SetFocus(s.form)
				return nil
			}
		}
		return event
	})

	s.Reload()
}

// Reload repaints the device list and loads the stored settings into the form
func (s *SettingsView) Reload() {
	s.current = s.registry.Current()
	s.list.Clear()

	if len(s.current) == 0 {
		s.list.AddItem("No devices detected", "", 0, nil)
	}
	for _, desc := range s.current {
		details := strings.ToUpper(string(desc.Transport))
		if desc.IsThermal {
			details += " • thermal"
		}
		s.list.AddItem(fmt.Sprintf("%s %s", StatusIcon(desc.Status), desc.Name), details, 0, nil)
	}

	cur := s.store.Current()
	s.receiptField().SetText(cur.DefaultReceiptDevice)
	s.labelField().SetText(cur.DefaultLabelDevice)
	s.form.GetFormItem(2).(*tview.Checkbox).SetChecked(cur.AutoCut)
	s.form.GetFormItem(3).(*tview.Checkbox).SetChecked(cur.AutoOpenDrawer)

	s.showCurrent(cur, "")
}

func (s *SettingsView) receiptField() *tview.InputField {
	return s.form.GetFormItem(0).(*tview.InputField)
}

func (s *SettingsView) labelField() *tview.InputField {
	return s.form.GetFormItem(1).(*tview.InputField)
}

func (s *SettingsView) pickDevice(index int) {
	if index < 0 || index >= len(s.current) {
		return
	}
	s.receiptField().SetText(s.current[index].Name)
	s.app.SetFocus(s.form)
}

func (s *SettingsView) save() {
	receipt := strings.TrimSpace(s.receiptField().GetText())
	label := strings.TrimSpace(s.labelField().GetText())
	autoCut := s.form.GetFormItem(2).(*tview.Checkbox).IsChecked()
	autoDrawer := s.form.GetFormItem(3).(*tview.Checkbox).IsChecked()

	err := s.store.Update(func(st *config.Settings) {
		st.DefaultReceiptDevice = receipt
		st.DefaultLabelDevice = label
		st.AutoCut = autoCut
		st.AutoOpenDrawer = autoDrawer
	})
	if err != nil {
		s.details.SetText(fmt.Sprintf("[red]✗ Save failed: %v[white]", err))
		return
	}

	s.showCurrent(s.store.Current(), "[green]✓ Saved[white]\n\n")
	s.app.SetFocus(s.list)
}

func (s *SettingsView) showCurrent(cur config.Settings, prefix string) {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(fmt.Sprintf("[yellow]Default receipt device:[white] %s\n", orNone(cur.DefaultReceiptDevice)))
	b.WriteString(fmt.Sprintf("[yellow]Default label device:[white] %s\n", orNone(cur.DefaultLabelDevice)))
	b.WriteString(fmt.Sprintf("[yellow]Auto cut:[white] %v\n", cur.AutoCut))
	b.WriteString(fmt.Sprintf("[yellow]Auto open drawer:[white] %v\n", cur.AutoOpenDrawer))
	b.WriteString("\n[yellow]Select a device to make it the receipt default, 'e' to edit, 'r' to reload[white]")
	s.details.SetText(b.String())
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

// GetRoot returns the root primitive for this screen
func (s *SettingsView) GetRoot() tview.Primitive {
	return s.layout
}
