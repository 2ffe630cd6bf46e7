package main

import (
	"fmt"
	"time"

	"github.com/patchdeck/midi/internal/logger"
	"github.com/patchdeck/midi/sdk/contracts"
	"github.com/patchdeck/midi/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	session, err := midi.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithClientName("Patchdeck Example"),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI session", log.Field().Error("error", err))
		return
	}
	defer session.Cleanup()

	devices, err := session.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	states := make(chan contracts.ConnectionState, 8)
	session.Watch(states)
	session.Connect(nil)

	for state := range states {
		if state.Status == contracts.StatusError {
			log.Error("Connection failed", log.Field().String("reason", state.Message))
			return
		}
		if state.Status == contracts.StatusConnected {
			fmt.Println("Connected to", state.Device)
			break
		}
	}

	// Select bank 2/0 program 5 on channel 1, then drop everything a whole step.
	session.SendProgramChange(1, 2, 0, 5)
	session.SendTranspose(1, -2)

	time.Sleep(100 * time.Millisecond)
	session.Disconnect()
}
