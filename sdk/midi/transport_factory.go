package midi

import (
	"runtime"

	"github.com/patchdeck/midi/internal/midi/mididarwin"
	"github.com/patchdeck/midi/internal/midi/midigomidi"
	"github.com/patchdeck/midi/internal/midi/midiwindows"
	"github.com/patchdeck/midi/sdk/contracts"
)

// transportInitializers maps OS names to their native transport backends.
// Platforms without a native backend fall back to the portable gomidi one.
var transportInitializers = map[string]func(*contracts.SessionOptions) (contracts.Transport, error){
	"darwin":  mididarwin.NewTransport,  // macOS (Darwin) CoreMIDI transport.
	"windows": midiwindows.NewTransport, // Windows winmm transport.
}

// newTransport selects a transport backend for the current operating system.
func newTransport(opts *contracts.SessionOptions) (contracts.Transport, error) {
	if initializer, exists := transportInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return midigomidi.NewTransport(opts)
}
