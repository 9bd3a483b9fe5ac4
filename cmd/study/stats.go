package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <deck-id>",
	Short: "Show how many cards are new, learning and known",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := setup(cmd)
		if err != nil {
			return err
		}
		stats, err := client.Stats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total %d\nknown %d\nlearning %d\nnew %d\n",
			stats.Total, stats.Known, stats.Learning, stats.New)
		return nil
	},
}
