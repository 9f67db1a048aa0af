//go:build windows
// +build windows

package midi

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// HMIDIOUT is a winmm output handle
type HMIDIOUT windows.Handle

// winmm result codes
const (
	MMSYSERR_NOERROR     = 0
	MMSYSERR_BADDEVICEID = 2
	MMSYSERR_ALLOCATED   = 4
	CALLBACK_NULL        = 0x00000000
)

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// winmmDriver uses the Windows multimedia MIDI output API
type winmmDriver struct{}

func newWinMMDriver() (Driver, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("winmm: %w", err)
	}
	return &winmmDriver{}, nil
}

func (d *winmmDriver) String() string {
	return "winmm"
}

func (d *winmmDriver) Devices() ([]Device, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)

	devices := make([]Device, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != MMSYSERR_NOERROR {
			continue
		}
		devices = append(devices, Device{
			ID:     int(i),
			Name:   windows.UTF16ToString(caps.szPname[:]),
			Output: true,
		})
	}
	return devices, nil
}

func (d *winmmDriver) OpenOutput(id int) (Port, error) {
	var handle HMIDIOUT
	r1, _, _ := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(id),
		0,
		0,
		CALLBACK_NULL,
	)
	switch r1 {
	case MMSYSERR_NOERROR:
		return &winmmPort{handle: handle}, nil
	case MMSYSERR_ALLOCATED:
		return nil, fmt.Errorf("midiOutOpen %d: device already allocated", id)
	case MMSYSERR_BADDEVICEID:
		return nil, fmt.Errorf("midiOutOpen %d: bad device id", id)
	default:
		return nil, fmt.Errorf("midiOutOpen %d: mmsyserr %d", id, r1)
	}
}

func (d *winmmDriver) Close() error {
	return nil
}

type winmmPort struct {
	handle HMIDIOUT
}

// Send packs a 3-byte message into the DWORD midiOutShortMsg expects
func (p *winmmPort) Send(msg []byte) error {
	if len(msg) != 3 {
		return fmt.Errorf("winmm: short message must be 3 bytes, got %d", len(msg))
	}
	dw := uint32(msg[0]) | uint32(msg[1])<<8 | uint32(msg[2])<<16
	r1, _, _ := procMidiOutShortMsg.Call(uintptr(p.handle), uintptr(dw))
	if r1 != MMSYSERR_NOERROR {
		return fmt.Errorf("midiOutShortMsg: mmsyserr %d", r1)
	}
	return nil
}

func (p *winmmPort) Close() error {
	r1, _, _ := procMidiOutClose.Call(uintptr(p.handle))
	if r1 != MMSYSERR_NOERROR {
		return fmt.Errorf("midiOutClose: mmsyserr %d", r1)
	}
	return nil
}
