package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patchdeck/midi/sdk/contracts"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect and print connection state changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer session.Cleanup()

		states := make(chan contracts.ConnectionState, 8)
		session.Watch(states)

		if err := connectAndWait(cmd, session); err != nil {
			return err
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case state := <-states:
				fmt.Println(state)
			case <-interrupt:
				session.Disconnect()
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
