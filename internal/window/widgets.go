package window

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// valueReadout shows a slider's value; tapping it restores the default
type valueReadout struct {
	widget.BaseWidget
	text  *canvas.Text
	onTap func()
}

func newValueReadout(text string, onTap func()) *valueReadout {
	t := canvas.NewText(text, theme.Color(theme.ColorNameForeground))
	t.Alignment = fyne.TextAlignCenter
	t.TextStyle = fyne.TextStyle{Monospace: true}
	r := &valueReadout{text: t, onTap: onTap}
	r.ExtendBaseWidget(r)
	return r
}

// SetText updates the readout
func (r *valueReadout) SetText(text string) {
	r.text.Text = text
	r.text.Refresh()
}

// Text returns what the readout currently shows
func (r *valueReadout) Text() string {
	return r.text.Text
}

func (r *valueReadout) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.text)
}

func (r *valueReadout) Tapped(_ *fyne.PointEvent) {
	if r.onTap != nil {
		r.onTap()
	}
}

func (r *valueReadout) TappedSecondary(_ *fyne.PointEvent) {}
