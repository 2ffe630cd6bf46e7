package main

import (
	"github.com/spf13/cobra"
)

var (
	sendChannel int
	sendMSB     uint8
	sendLSB     uint8
	sendPC      uint8
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a program change with bank select",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer session.Cleanup()

		if err := connectAndWait(cmd, session); err != nil {
			return err
		}
		session.SendProgramChange(sendChannel, sendMSB, sendLSB, sendPC)
		return nil
	},
}

var (
	bankIndex int
	bankCmd   = &cobra.Command{
		Use:   "bank",
		Short: "Select a live-set bank (0-based index)",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer session.Cleanup()

			if err := connectAndWait(cmd, session); err != nil {
				return err
			}
			session.SendLiveSetBankChange(bankIndex)
			return nil
		},
	}
)

var (
	transposeChannel   int
	transposeSemitones int
	transposeCmd       = &cobra.Command{
		Use:   "transpose",
		Short: "Transpose a channel by semitones (-11..11)",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer session.Cleanup()

			if err := connectAndWait(cmd, session); err != nil {
				return err
			}
			session.SendTranspose(transposeChannel, transposeSemitones)
			return nil
		},
	}
)

func init() {
	sendCmd.Flags().IntVarP(&sendChannel, "channel", "c", 1, "MIDI channel (1-16)")
	sendCmd.Flags().Uint8Var(&sendMSB, "msb", 0, "Bank select MSB (0-127)")
	sendCmd.Flags().Uint8Var(&sendLSB, "lsb", 0, "Bank select LSB (0-127)")
	sendCmd.Flags().Uint8Var(&sendPC, "pc", 0, "Program number (0-127)")

	bankCmd.Flags().IntVarP(&bankIndex, "index", "i", 0, "Bank index (0-7)")

	transposeCmd.Flags().IntVarP(&transposeChannel, "channel", "c", 1, "MIDI channel (1-16)")
	transposeCmd.Flags().IntVarP(&transposeSemitones, "semitones", "s", 0, "Semitones (-11..11)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(transposeCmd)
}
