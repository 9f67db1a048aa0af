package window

import (
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-cc/internal/panel"
	"github.com/PixPMusic/gopher-cc/internal/params"
)

const devicePlaceholder = "Select MIDI device"

// sectionColor tints the background of each section
var sectionColor = color.NRGBA{R: 0x90, G: 0xEE, B: 0x90, A: 40}

// control is the on-screen binding of one registry control
type control struct {
	def     params.Control
	slider  *widget.Slider
	readout *valueReadout
}

// MainWindow manages the control panel window
type MainWindow struct {
	window fyne.Window
	app    fyne.App
	ctrl   *panel.Controller
	log    *zap.Logger

	deviceSelect  *widget.Select
	deviceIDs     map[string]int // select option -> device id
	channelSelect *widget.Select
	refreshBtn    *widget.Button
	statusLabel   *widget.Label

	controls map[string]*control
}

// NewMainWindow creates the panel window. Every slider starts on its
// control's default, which is recorded with the controller.
func NewMainWindow(app fyne.App, ctrl *panel.Controller, log *zap.Logger) *MainWindow {
	win := app.NewWindow("GopherCC")

	mw := &MainWindow{
		window:    win,
		app:       app,
		ctrl:      ctrl,
		log:       log.Named("window"),
		deviceIDs: make(map[string]int),
		controls:  make(map[string]*control),
	}

	mw.setupUI()
	ctrl.PrimeDefaults()
	mw.updateDevices()

	win.Resize(fyne.NewSize(1100, 420))
	win.CenterOnScreen()
	win.SetMaster()

	win.SetCloseIntercept(func() {
		mw.ctrl.Shutdown()
		win.Close()
	})

	return mw
}

func (mw *MainWindow) setupUI() {
	mw.window.SetContent(container.NewBorder(
		container.NewVBox(mw.createSettingsBar(), widget.NewSeparator()),
		nil, nil, nil,
		container.NewHScroll(mw.createSections()),
	))
}

func (mw *MainWindow) createSettingsBar() fyne.CanvasObject {
	mw.deviceSelect = widget.NewSelect(nil, mw.selectDevice)
	mw.deviceSelect.PlaceHolder = devicePlaceholder

	mw.refreshBtn = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), mw.refreshDevices)

	channels := make([]string, 0, panel.MaxChannel)
	for ch := panel.MinChannel; ch <= panel.MaxChannel; ch++ {
		channels = append(channels, strconv.Itoa(ch))
	}
	mw.channelSelect = widget.NewSelect(channels, nil)
	mw.channelSelect.SetSelected(strconv.Itoa(mw.ctrl.Channel()))
	mw.channelSelect.OnChanged = mw.selectChannel

	mw.statusLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	return container.NewHBox(
		widget.NewLabel("MIDI Device:"),
		container.NewGridWrap(fyne.NewSize(320, mw.deviceSelect.MinSize().Height), mw.deviceSelect),
		mw.refreshBtn,
		widget.NewSeparator(),
		widget.NewLabel("Channel:"),
		mw.channelSelect,
		widget.NewSeparator(),
		mw.statusLabel,
	)
}

func (mw *MainWindow) createSections() fyne.CanvasObject {
	row := container.NewHBox()
	for _, sec := range mw.ctrl.Registry().Sections() {
		row.Add(mw.createSection(sec))
	}
	return row
}

func (mw *MainWindow) createSection(sec params.Section) fyne.CanvasObject {
	columns := container.NewHBox()
	for _, c := range sec.Controls {
		columns.Add(mw.createControl(c))
	}

	bg := canvas.NewRectangle(sectionColor)
	bg.CornerRadius = 4

	title := container.NewCenter(verticalTitle(sec.Name, mw.log))
	return container.NewStack(bg, container.NewPadded(container.NewBorder(nil, nil, title, nil, columns)))
}

func (mw *MainWindow) createControl(def params.Control) fyne.CanvasObject {
	c := &control{def: def}

	c.slider = widget.NewSlider(0, params.MaxValue)
	c.slider.Step = 1
	c.slider.Orientation = widget.Vertical
	c.slider.Value = float64(def.Default)
	c.slider.OnChanged = func(v float64) { mw.onSliderChanged(c, v) }

	c.readout = newValueReadout(strconv.Itoa(int(def.Default)), func() { mw.resetControl(c) })

	name := widget.NewLabelWithStyle(def.Label, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	cc := widget.NewLabelWithStyle(fmt.Sprintf("CC %d", def.CC), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	mw.controls[def.ID] = c
	return container.NewBorder(c.readout, container.NewVBox(name, cc), nil, nil, c.slider)
}

func (mw *MainWindow) onSliderChanged(c *control, v float64) {
	value := int(v)
	c.readout.SetText(strconv.Itoa(value))
	mw.ctrl.OnParameterChanged(c.def.ID, value)
	mw.updateStatus()
}

// resetControl moves a slider back to its default and reports it once
func (mw *MainWindow) resetControl(c *control) {
	cb := c.slider.OnChanged
	c.slider.OnChanged = nil
	c.slider.SetValue(float64(c.def.Default))
	c.slider.OnChanged = cb

	mw.onSliderChanged(c, float64(c.def.Default))
}

func (mw *MainWindow) refreshDevices() {
	mw.ctrl.RefreshDevices()
	mw.updateDevices()
}

// updateDevices rebuilds the device options from the controller and keeps
// the selection only while that device is still connected.
func (mw *MainWindow) updateDevices() {
	devices := mw.ctrl.Devices()

	state := mw.ctrl.State()
	mw.deviceIDs = make(map[string]int, len(devices))
	options := make([]string, 0, len(devices))
	selected := ""
	for _, d := range devices {
		label := d.Label()
		options = append(options, label)
		mw.deviceIDs[label] = d.ID
		// the label gains [IN USE] once we hold the port, so match on id
		if state.Kind == panel.Connected && d.ID == state.Device.ID {
			selected = label
		}
	}

	cb := mw.deviceSelect.OnChanged
	mw.deviceSelect.OnChanged = nil
	mw.deviceSelect.SetOptions(options)
	if selected != "" {
		mw.deviceSelect.SetSelected(selected)
	} else if state.Kind == panel.Disconnected {
		mw.deviceSelect.ClearSelected()
	}
	mw.deviceSelect.OnChanged = cb

	mw.updateStatus()
}

func (mw *MainWindow) selectDevice(label string) {
	id, ok := mw.deviceIDs[label]
	if !ok {
		return
	}
	mw.ctrl.SelectDevice(id)
	mw.updateStatus()
}

func (mw *MainWindow) selectChannel(s string) {
	ch, err := strconv.Atoi(s)
	if err != nil {
		mw.log.Warn("Invalid channel", zap.String("channel", s))
		return
	}
	mw.ctrl.SelectChannel(ch)
}

func (mw *MainWindow) updateStatus() {
	status := mw.ctrl.Status()
	if mw.statusLabel.Text == status {
		return
	}
	mw.statusLabel.SetText(status)
	if mw.ctrl.State().Kind == panel.Connected {
		mw.statusLabel.Importance = widget.SuccessImportance
	} else {
		mw.statusLabel.Importance = widget.DangerImportance
	}
	mw.statusLabel.Refresh()
}

// Show displays the window
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// ShowAndRun displays the window and runs the app until it is closed
func (mw *MainWindow) ShowAndRun() {
	mw.window.ShowAndRun()
}

// Window returns the underlying fyne window
func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}
