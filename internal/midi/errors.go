package midi

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for device enumeration and transmission.
var (
	ErrEnumeration       = errors.New("midi device enumeration failed")
	ErrTransmit          = errors.New("midi transmit failed")
	ErrNotOpen           = errors.New("midi output not open")
	ErrTimeout           = errors.New("midi platform call timed out")
	ErrDriverUnavailable = errors.New("midi driver not available on this platform")
	ErrUnknownDriver     = errors.New("unknown midi driver")
)

// Reason classifies why an output could not be opened
type Reason int

const (
	ReasonUnavailable Reason = iota
	ReasonInUse
	ReasonInvalidDevice
	ReasonTimeout
)

func (r Reason) String() string {
	switch r {
	case ReasonInUse:
		return "device in use"
	case ReasonInvalidDevice:
		return "invalid device"
	case ReasonTimeout:
		return "timed out"
	default:
		return "device unavailable"
	}
}

// ConnectionError is returned when an output device cannot be opened
type ConnectionError struct {
	DeviceID int
	Reason   Reason
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("open device %d: %s", e.DeviceID, e.Reason)
	}
	return fmt.Sprintf("open device %d: %s: %v", e.DeviceID, e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Suggestion returns a hint for the user, or "" if there is none
func (e *ConnectionError) Suggestion() string {
	switch e.Reason {
	case ReasonInUse:
		return "The device might be in use by another application (like your DAW)"
	case ReasonInvalidDevice:
		return "Try refreshing the device list"
	case ReasonTimeout:
		return "The MIDI service is not responding; try again or restart it"
	}
	return ""
}

// classifyOpenError maps a driver error onto a Reason using the wording
// the common platform services put in their messages.
func classifyOpenError(err error) Reason {
	if errors.Is(err, ErrTimeout) {
		return ReasonTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "in use"),
		strings.Contains(msg, "already allocated"),
		strings.Contains(msg, "device unavailable"),
		strings.Contains(msg, "busy"):
		return ReasonInUse
	case strings.Contains(msg, "invalid device"),
		strings.Contains(msg, "bad device"),
		strings.Contains(msg, "no such"),
		strings.Contains(msg, "not found"):
		return ReasonInvalidDevice
	}
	return ReasonUnavailable
}
