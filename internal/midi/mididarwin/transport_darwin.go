//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"

	"github.com/youpy/go-coremidi"

	"github.com/patchdeck/midi/sdk/contracts"
)

// Error definitions for CoreMIDI transport issues.
var (
	ErrCreateOutputPort = errors.New("error creating output port")
	ErrListDestinations = errors.New("error listing MIDI destinations")
)

// Transport implements the transport contract on CoreMIDI destinations.
type Transport struct {
	logger contracts.Logger
	client coremidi.Client
}

// NewTransport creates a CoreMIDI client for sending to destinations.
func NewTransport(options *contracts.SessionOptions) (contracts.Transport, error) {
	client, err := coremidi.NewClient(options.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("CoreMIDI client successfully created")

	return &Transport{
		logger: options.Logger,
		client: client,
	}, nil
}

// Devices lists the platform's current MIDI destinations. A destination is
// writable by construction, so every entry reports HasInput.
func (t *Transport) Devices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListDestinations, err)
	}

	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, destination := range destinations {
		entity := destination.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         destination.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
			HasInput:     true,
		}
	}
	return devices, nil
}

// Open creates an output port bound to the destination matching the device
// name. The destination list is re-read so a stale DeviceInfo cannot bind to
// a removed endpoint.
func (t *Transport) Open(device contracts.DeviceInfo) (contracts.Port, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListDestinations, err)
	}

	for _, destination := range destinations {
		if destination.Name() != device.Name {
			continue
		}
		outputPort, err := coremidi.NewOutputPort(t.client, "Output Port")
		if err != nil {
			t.logger.Error(ErrCreateOutputPort.Error())
			return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
		}
		return &port{output: outputPort, destination: destination}, nil
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrNoWritablePort, device.Name)
}

// Close releases the transport. CoreMIDI client resources live with the
// process; nothing to tear down explicitly.
func (t *Transport) Close() error {
	return nil
}

type port struct {
	output      coremidi.OutputPort
	destination coremidi.Destination
}

func (p *port) Write(data []byte) error {
	packet := coremidi.NewPacket(data, 0)
	return packet.Send(&p.output, &p.destination)
}

func (p *port) Close() error {
	return nil
}
