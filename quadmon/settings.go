package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/moondog-sim/quadrant/pkg/quad"
)

// showSettingsDialog displays a settings dialog with tabs for the tunables
// that make sense to change while monitoring. Per-axis calibration lives in
// the config file.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createLoopTab(state),
		createTrimTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := quad.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	portSelect.SetSelected(currentPort)

	baudEntry := widget.NewEntry()
	baudEntry.SetText(fmt.Sprintf("%d", state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createLoopTab creates the Loop/Filter configuration tab.
func createLoopTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Loop.Period.String())

	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%d", state.cfg.Filter.Window))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Cycle Period", Widget: periodEntry},
			{Text: "Filter Window (samples)", Widget: windowEntry},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Loop.Period = p
			}
			if w, err := strconv.Atoi(windowEntry.Text); err == nil && w >= 1 {
				state.cfg.Filter.Window = w
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
			// Takes effect on the next connect; the running chain keeps
			// its tuning.
		},
	}

	return container.NewTabItem("Loop", form)
}

// createTrimTab creates the Trim configuration tab.
func createTrimTab(state *appState) *container.TabItem {
	gainEntry := widget.NewEntry()
	gainEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Trim.Gain))

	lowEntry := widget.NewEntry()
	lowEntry.SetText(fmt.Sprintf("%d", state.cfg.Trim.Low))

	highEntry := widget.NewEntry()
	highEntry.SetText(fmt.Sprintf("%d", state.cfg.Trim.High))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Gain", Widget: gainEntry},
			{Text: "Clamp Low", Widget: lowEntry},
			{Text: "Clamp High", Widget: highEntry},
		},
		OnSubmit: func() {
			if g, err := strconv.ParseFloat(gainEntry.Text, 32); err == nil {
				state.cfg.Trim.Gain = float32(g)
			}
			if lo, err := strconv.Atoi(lowEntry.Text); err == nil {
				state.cfg.Trim.Low = lo
			}
			if hi, err := strconv.Atoi(highEntry.Text); err == nil && hi > state.cfg.Trim.Low {
				state.cfg.Trim.High = hi
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Trim", form)
}
