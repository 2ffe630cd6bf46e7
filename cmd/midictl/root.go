package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/patchdeck/midi/sdk/contracts"
	"github.com/patchdeck/midi/sdk/midi"
)

var rootCmd = &cobra.Command{
	Use:   "midictl",
	Short: "midictl drives a synth over MIDI from the command line",
	Long: `midictl enumerates MIDI output devices and sends patch-selection,
live-set bank and transpose messages to one of them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("device", "", "Device name to connect to (default: first candidate)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

// newSession builds a session honoring the persistent flags.
func newSession(cmd *cobra.Command) (contracts.Session, error) {
	level := contracts.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = contracts.DebugLevel
	}
	return midi.NewSession(
		contracts.WithLogLevel(level),
		contracts.WithClientName("midictl"),
	)
}

// connectAndWait connects to the flagged device (or the first candidate) and
// blocks until the session settles into a terminal state.
func connectAndWait(cmd *cobra.Command, session contracts.Session) error {
	var target *contracts.DeviceInfo
	if name, _ := cmd.Flags().GetString("device"); name != "" {
		devices, err := session.ListDevices()
		if err != nil {
			return err
		}
		for i := range devices {
			if devices[i].Name == name {
				target = &devices[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("no device named %q", name)
		}
	}

	states := make(chan contracts.ConnectionState, 8)
	session.Watch(states)
	session.Connect(target)

	timeout := time.After(10 * time.Second)
	for {
		select {
		case state := <-states:
			switch state.Status {
			case contracts.StatusConnected:
				fmt.Printf("connected to %s\n", state.Device)
				return nil
			case contracts.StatusError:
				return fmt.Errorf("connect failed: %s", state.Message)
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for connection")
		}
	}
}
