package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/moondog-sim/quadrant/pkg/config"
	"github.com/moondog-sim/quadrant/pkg/quad"
	"github.com/moondog-sim/quadrant/pkg/report"
)

// axisView is the live per-axis table: one row per configured axis showing
// the conditioning stages (raw, smoothed, mapped, Δ, output) and a bar for
// the final position, plus a row of button indicators underneath.
type axisView struct {
	widget.BaseWidget

	rows    []*axisRow
	buttons *widget.Label
	content fyne.CanvasObject
}

type axisRow struct {
	name   *widget.Label
	raw    *widget.Label
	smooth *widget.Label
	mapped *widget.Label
	delta  *widget.Label
	output *widget.Label
	bar    *widget.ProgressBar
}

// newAxisView builds the view with one row per configured axis.
func newAxisView(cfg *config.Config) *axisView {
	v := &axisView{}

	header := container.NewGridWithColumns(6,
		widget.NewLabelWithStyle("Axis", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Raw", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Smoothed", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Mapped", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("ΔMapped", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Output", fyne.TextAlignTrailing, fyne.TextStyle{Bold: true}),
	)

	rowsBox := container.NewVBox(header)
	for _, ac := range cfg.Axes {
		row := &axisRow{
			name:   widget.NewLabel(ac.Name),
			raw:    newValueLabel(),
			smooth: newValueLabel(),
			mapped: newValueLabel(),
			delta:  newValueLabel(),
			output: newValueLabel(),
			bar:    widget.NewProgressBar(),
		}
		row.bar.Min = float64(config.OutputMin)
		row.bar.Max = float64(config.OutputMax)
		if ac.Role == config.RoleTrim {
			row.name.SetText(ac.Name + " (trim)")
		}
		v.rows = append(v.rows, row)

		rowsBox.Add(container.NewGridWithColumns(6,
			row.name, row.raw, row.smooth, row.mapped, row.delta, row.output))
		rowsBox.Add(row.bar)
	}

	v.buttons = widget.NewLabel(buttonText(0))
	rowsBox.Add(widget.NewSeparator())
	rowsBox.Add(v.buttons)

	v.content = container.NewVScroll(rowsBox)
	v.ExtendBaseWidget(v)
	return v
}

func newValueLabel() *widget.Label {
	l := widget.NewLabel("—")
	l.Alignment = fyne.TextAlignTrailing
	return l
}

// UpdateData refreshes the table from a finished report frame. Must be called
// on the main Fyne thread (via fyne.Do from pipeline callbacks).
func (v *axisView) UpdateData(frame report.Frame) {
	for i, row := range v.rows {
		if i >= len(frame.Detail) {
			break
		}
		r := frame.Detail[i]
		row.raw.SetText(fmt.Sprintf("%d", r.Raw))
		row.smooth.SetText(fmt.Sprintf("%d", r.Smoothed))
		row.mapped.SetText(fmt.Sprintf("%d", r.Mapped))
		row.delta.SetText(fmt.Sprintf("%d", r.Delta))
		row.output.SetText(fmt.Sprintf("%d", r.Output))
		row.bar.SetValue(float64(r.Output))
	}
	v.buttons.SetText(buttonText(frame.Buttons))
}

// buttonText renders the pressed-button indicator row.
func buttonText(mask uint32) string {
	pressed := ""
	for i := 0; i < quad.NumButtons; i++ {
		if mask&(1<<uint(i)) != 0 {
			if pressed != "" {
				pressed += " "
			}
			pressed += fmt.Sprintf("B%d", i+1)
		}
	}
	if pressed == "" {
		pressed = "none"
	}
	return fmt.Sprintf("Buttons: %s  (%08x)", pressed, mask)
}

// CreateRenderer implements fyne.Widget.
func (v *axisView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.content)
}
