package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bountyboard/services/bounty"
	"bountyboard/services/userstat"
)

func overviewCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print mirror-wide totals and the top builders",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := setup()
			mirror := openMirror(cfg)

			bounties := bounty.NewService(bounty.ServiceParams{DB: mirror})
			tv, err := bounties.TotalValueLocked(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "overview failed: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("bounties:       %d\n", tv.BountyCount)
			fmt.Printf("total APT:      %d\n", tv.APT)
			fmt.Printf("total stable:   %d\n", tv.Stable)

			stats := userstat.NewService(userstat.ServiceParams{DB: mirror})
			board, err := stats.List(cmd.Context(), userstat.ListRequest{Page: 1, Limit: top})
			if err != nil {
				fmt.Fprintf(os.Stderr, "overview failed: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("\ntop %d by points:\n", len(board.Stats))
			for i, s := range board.Stats {
				fmt.Printf("%2d. %s  points=%d builds=%d\n", i+1, s.UserAddr, s.TotalPoints, s.BuildCompleted)
			}
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of leaderboard rows to print")
	return cmd
}
