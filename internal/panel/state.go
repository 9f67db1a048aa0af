package panel

import (
	"fmt"

	"github.com/PixPMusic/gopher-cc/internal/midi"
)

// StateKind is the connection status of the panel
type StateKind int

const (
	Disconnected StateKind = iota
	Connected
	Failed
)

// State is what the status line shows
type State struct {
	Kind    StateKind
	Device  midi.Device // set when Connected
	Message string      // set when Failed
}

func (s State) String() string {
	switch s.Kind {
	case Connected:
		return fmt.Sprintf("Connected to %s", s.Device.Name)
	case Failed:
		return fmt.Sprintf("Error - %s", s.Message)
	default:
		return "Not Connected"
	}
}

// Stats counts what happened to parameter changes
type Stats struct {
	Sent       int // transmitted successfully
	Suppressed int // same value as the last one, not sent
	Failed     int // transmit error
}
