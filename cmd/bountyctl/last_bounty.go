package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bountyboard/services/bounty"
)

func lastBountyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "last-bounty",
		Short: "Print the most recently created bounty from the mirror",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := setup()
			mirror := openMirror(cfg)

			svc := bounty.NewService(bounty.ServiceParams{DB: mirror})
			resp, err := svc.List(cmd.Context(), bounty.ListRequest{
				Page:   1,
				Limit:  1,
				SortBy: "create_timestamp",
				Order:  "DESC",
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "last-bounty failed: %v\n", err)
				os.Exit(1)
			}
			if len(resp.Bounties) == 0 {
				fmt.Println("mirror holds no bounties")
				return
			}

			b := resp.Bounties[0]
			fmt.Printf("address:            %s\n", b.BountyObjAddr)
			fmt.Printf("creator:            %s\n", b.CreatorAddr)
			fmt.Printf("title:              %s\n", b.Title)
			fmt.Printf("status:             %s\n", b.Status(time.Now()))
			fmt.Printf("payment per winner: %d\n", b.PaymentPerWinner)
			fmt.Printf("winners:            %d/%d\n", b.WinnerCount, b.WinnerLimit)
			if b.NeverEnds() {
				fmt.Printf("ends:               never\n")
			} else {
				fmt.Printf("ends:               %s\n", time.Unix(b.EndTimestamp, 0).UTC().Format(time.RFC3339))
			}
		},
	}
	return cmd
}
