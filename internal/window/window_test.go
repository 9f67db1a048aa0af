package window

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/PixPMusic/gopher-cc/internal/midi"
	"github.com/PixPMusic/gopher-cc/internal/midi/miditest"
	"github.com/PixPMusic/gopher-cc/internal/panel"
	"github.com/PixPMusic/gopher-cc/internal/params"
)

var nts1 = midi.Device{ID: 0, Name: "NTS-1 digital kit", Output: true}

const cutoff = "filter/cutoff"

func newTestWindow(t *testing.T, drv *miditest.Driver) (*MainWindow, *panel.Controller) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctrl := panel.New(midi.NewManager(drv, log, midi.DefaultOptions()), params.Default(), log)
	ctrl.RefreshDevices()
	return NewMainWindow(test.NewTempApp(t), ctrl, log), ctrl
}

func TestNewMainWindowStartsOnDefaults(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, ctrl := newTestWindow(t, drv)

	assert.Len(t, mw.controls, 17)
	for _, c := range ctrl.Registry().Controls() {
		v, ok := ctrl.Value(c.ID)
		require.True(t, ok, c.ID)
		assert.Equal(t, c.Default, v, c.ID)
		assert.Equal(t, float64(c.Default), mw.controls[c.ID].slider.Value, c.ID)
	}
	assert.Equal(t, []string{"0: NTS-1 digital kit"}, mw.deviceSelect.Options)
	assert.Equal(t, "1", mw.channelSelect.Selected)
	assert.Equal(t, "Status: Not Connected", mw.statusLabel.Text)
	assert.Empty(t, drv.Sent())
}

func TestSliderSendsOnceConnected(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, _ := newTestWindow(t, drv)

	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")
	require.Equal(t, "Status: Connected to NTS-1 digital kit", mw.statusLabel.Text)

	c := mw.controls[cutoff]
	c.slider.OnChanged(127) // still on its default
	c.slider.OnChanged(100)

	assert.Equal(t, [][]byte{{0xB0, 43, 100}}, drv.Messages())
	assert.Equal(t, "100", c.readout.Text())
}

func TestChannelSelect(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, ctrl := newTestWindow(t, drv)
	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")

	mw.channelSelect.SetSelected("5")
	mw.controls["reverb/mix"].slider.OnChanged(10)

	assert.Equal(t, 5, ctrl.Channel())
	assert.Equal(t, [][]byte{{0xB4, 36, 10}}, drv.Messages())
}

func TestTappingReadoutRestoresDefault(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, _ := newTestWindow(t, drv)
	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")

	c := mw.controls["amp-env/release"]
	c.slider.OnChanged(90)
	test.Tap(c.readout)

	assert.Equal(t, [][]byte{{0xB0, 19, 90}, {0xB0, 19, 64}}, drv.Messages())
	assert.Equal(t, float64(64), c.slider.Value)
	assert.Equal(t, "64", c.readout.Text())
}

func TestRefreshDropsVanishedDevice(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, ctrl := newTestWindow(t, drv)
	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")

	drv.SetDevices()
	test.Tap(mw.refreshBtn)

	assert.Equal(t, panel.Disconnected, ctrl.State().Kind)
	assert.Empty(t, mw.deviceSelect.Options)
	assert.Empty(t, mw.deviceSelect.Selected)
	assert.Equal(t, "Status: No MIDI devices found", mw.statusLabel.Text)
	assert.Zero(t, drv.OpenPorts())
}

func TestRefreshKeepsConnectedSelection(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	mw, _ := newTestWindow(t, drv)
	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")

	inUse := nts1
	inUse.InUse = true
	drv.SetDevices(inUse)
	test.Tap(mw.refreshBtn)

	assert.Equal(t, "0: NTS-1 digital kit [IN USE]", mw.deviceSelect.Selected)
	assert.Equal(t, []string{"devices", "open:0", "devices"}, drv.Events())
}

func TestConnectionFailureShowsError(t *testing.T) {
	drv := miditest.NewDriver(nts1)
	drv.SetOpenErr(nts1.ID, assert.AnError)
	mw, _ := newTestWindow(t, drv)

	mw.deviceSelect.SetSelected("0: NTS-1 digital kit")

	assert.Contains(t, mw.statusLabel.Text, "Status: Error - ")
}

func TestRotateCCW(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	red := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, red)

	dst := rotateCCW(src)

	assert.Equal(t, image.Rect(0, 0, 2, 3), dst.Bounds())
	// top-left moves to bottom-left
	assert.Equal(t, red, dst.RGBAAt(0, 2))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
}

func TestVerticalTitleIsTallerThanWide(t *testing.T) {
	test.NewTempApp(t)

	img := verticalTitle("Modulation", zaptest.NewLogger(t))

	size := img.MinSize()
	assert.Greater(t, size.Height, size.Width)
}
