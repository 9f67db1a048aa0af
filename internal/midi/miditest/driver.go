// Package miditest provides an in-memory midi.Driver for tests.
package miditest

import (
	"fmt"
	"sync"

	"github.com/PixPMusic/gopher-cc/internal/midi"
)

// Sent is one message written to a fake port
type Sent struct {
	DeviceID int
	Msg      []byte
}

// Driver is a scriptable midi.Driver that records every call
type Driver struct {
	mu         sync.Mutex
	devices    []midi.Device
	devicesErr error
	openErr    map[int]error
	sendErr    error
	stall      chan struct{}
	events     []string
	sent       []Sent
	open       map[int]int
	closed     bool
}

// NewDriver creates a fake driver reporting the given devices
func NewDriver(devices ...midi.Device) *Driver {
	return &Driver{
		devices: devices,
		openErr: make(map[int]error),
		open:    make(map[int]int),
	}
}

// SetDevices replaces the devices reported by the next enumeration
func (d *Driver) SetDevices(devices ...midi.Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = devices
}

// SetDevicesErr makes enumeration fail with err (nil clears it)
func (d *Driver) SetDevicesErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devicesErr = err
}

// SetOpenErr makes opening device id fail with err (nil clears it)
func (d *Driver) SetOpenErr(id int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.openErr, id)
		return
	}
	d.openErr[id] = err
}

// SetSendErr makes every send fail with err (nil clears it)
func (d *Driver) SetSendErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sendErr = err
}

// Stall blocks enumeration, open and send until the returned func is called
func (d *Driver) Stall() (release func()) {
	ch := make(chan struct{})
	d.mu.Lock()
	d.stall = ch
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			d.stall = nil
			d.mu.Unlock()
			close(ch)
		})
	}
}

// Events returns the recorded calls, e.g. "open:1", "send:1", "close:1"
func (d *Driver) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// Sent returns every message written so far
func (d *Driver) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Sent(nil), d.sent...)
}

// Messages returns the raw bytes of every message written so far
func (d *Driver) Messages() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	msgs := make([][]byte, len(d.sent))
	for i, s := range d.sent {
		msgs[i] = s.Msg
	}
	return msgs
}

// OpenPorts returns how many ports are open right now
func (d *Driver) OpenPorts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.open {
		n += c
	}
	return n
}

// Closed reports whether Close was called on the driver
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) String() string {
	return "fake"
}

func (d *Driver) Devices() ([]midi.Device, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, "devices")
	if d.devicesErr != nil {
		return nil, d.devicesErr
	}
	return append([]midi.Device(nil), d.devices...), nil
}

func (d *Driver) OpenOutput(id int) (midi.Port, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, fmt.Sprintf("open:%d", id))
	if err := d.openErr[id]; err != nil {
		return nil, err
	}
	d.open[id]++
	return &port{drv: d, id: id}, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, "driver-close")
	d.closed = true
	return nil
}

func (d *Driver) wait() {
	d.mu.Lock()
	ch := d.stall
	d.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

type port struct {
	drv    *Driver
	id     int
	closed bool
}

func (p *port) Send(msg []byte) error {
	p.drv.wait()
	p.drv.mu.Lock()
	defer p.drv.mu.Unlock()
	p.drv.events = append(p.drv.events, fmt.Sprintf("send:%d", p.id))
	if p.drv.sendErr != nil {
		return p.drv.sendErr
	}
	p.drv.sent = append(p.drv.sent, Sent{DeviceID: p.id, Msg: append([]byte(nil), msg...)})
	return nil
}

func (p *port) Close() error {
	p.drv.mu.Lock()
	defer p.drv.mu.Unlock()
	p.drv.events = append(p.drv.events, fmt.Sprintf("close:%d", p.id))
	if !p.closed {
		p.closed = true
		p.drv.open[p.id]--
	}
	return nil
}
