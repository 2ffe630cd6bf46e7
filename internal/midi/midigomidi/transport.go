// Package midigomidi implements the transport contract on gomidi's rtmidi
// driver. It is the backend for platforms without a native one.
package midigomidi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver

	"github.com/patchdeck/midi/sdk/contracts"
)

// Transport enumerates and opens rtmidi output ports.
type Transport struct {
	logger contracts.Logger
}

// NewTransport creates the gomidi-backed transport.
func NewTransport(options *contracts.SessionOptions) (contracts.Transport, error) {
	options.Logger.Info("using gomidi transport")
	return &Transport{logger: options.Logger}, nil
}

// Devices lists the platform's current MIDI output ports. An output port is
// writable by construction, so every entry reports HasInput.
func (t *Transport) Devices() ([]contracts.DeviceInfo, error) {
	outs := midi.GetOutPorts()
	devices := make([]contracts.DeviceInfo, 0, len(outs))
	for _, out := range outs {
		devices = append(devices, contracts.DeviceInfo{
			Name:       out.String(),
			EntityName: out.String(),
			HasInput:   true,
		})
	}
	return devices, nil
}

// Open acquires the output port matching the device name.
func (t *Transport) Open(device contracts.DeviceInfo) (contracts.Port, error) {
	out := findOutPort(device.Name)
	if out == nil {
		return nil, fmt.Errorf("%w: %s", contracts.ErrNoWritablePort, device.Name)
	}
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("opening output port %q: %w", device.Name, err)
	}
	return &port{out: out}, nil
}

// Close shuts the rtmidi driver down.
func (t *Transport) Close() error {
	midi.CloseDriver()
	return nil
}

func findOutPort(name string) drivers.Out {
	for _, out := range midi.GetOutPorts() {
		if out.String() == name {
			return out
		}
	}
	return nil
}

type port struct {
	out drivers.Out
}

func (p *port) Write(data []byte) error {
	return p.out.Send(data)
}

func (p *port) Close() error {
	return p.out.Close()
}
