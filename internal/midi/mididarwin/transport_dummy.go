//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/patchdeck/midi/sdk/contracts"
)

// NewTransport is the non-darwin stub; the factory never selects it off macOS.
func NewTransport(options *contracts.SessionOptions) (contracts.Transport, error) {
	options.Logger.Warn("CoreMIDI transport requested on a non-macOS system")
	return nil, errors.New("CoreMIDI transport is only available on macOS")
}
