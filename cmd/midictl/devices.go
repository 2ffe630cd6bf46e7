package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List candidate MIDI output devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer session.Cleanup()

		devices, err := session.ListDevices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no MIDI devices found")
			return nil
		}
		for _, device := range devices {
			line := device.Name
			if device.Manufacturer != "" {
				line = fmt.Sprintf("%s (%s)", line, device.Manufacturer)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
