package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restartCmd = &cobra.Command{
	Use:   "restart <deck-id>",
	Short: "Forget all progress on a deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := client.RestartDeck(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deck %s restarted\n", args[0])
		return nil
	},
}
