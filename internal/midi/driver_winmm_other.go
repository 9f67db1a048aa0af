//go:build !windows
// +build !windows

package midi

import "fmt"

func newWinMMDriver() (Driver, error) {
	return nil, fmt.Errorf("%w: winmm is Windows only", ErrDriverUnavailable)
}
