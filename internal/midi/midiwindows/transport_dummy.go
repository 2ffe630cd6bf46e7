//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/patchdeck/midi/sdk/contracts"
)

// NewTransport is the non-windows stub; the factory never selects it off Windows.
func NewTransport(options *contracts.SessionOptions) (contracts.Transport, error) {
	options.Logger.Warn("winmm transport requested on a non-Windows system")
	return nil, errors.New("winmm transport is only available on Windows")
}
