package commands

import (
	"fmt"
	"os"
	"staysync/lib/reservation"
	"staysync/lib/stats"

	"github.com/spf13/cobra"
)

var statsInput *string

func init() {
	statsInput = statsCmd.Flags().String("input", "", "Persisted reservations JSON file to summarize.")
	statsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats --input <reservations.json>",
	Short: "Prints grouped totals for a persisted fetch result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := reservation.ReadFile(*statsInput)
		if err != nil {
			return err
		}
		summary := stats.Aggregate(records)
		fmt.Fprint(os.Stdout, summary.Render())
		return nil
	},
}
