package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bountyboard/chain"
	"bountyboard/chain/chaintest"
	"bountyboard/pkg/chainaddr"
	"bountyboard/pkg/config"
)

func endBountyCommand() *cobra.Command {
	var bountyAddr string

	cmd := &cobra.Command{
		Use:   "end-bounty",
		Short: "Submit end_bounty for one bounty and wait for finality",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := setup()

			bounty, err := chainaddr.Parse(bountyAddr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad --bounty: %v\n", err)
				os.Exit(1)
			}

			gw, signer := newGateway(cfg)
			token, err := gw.EndBounty(cmd.Context(), signer, bounty)
			if err != nil {
				fmt.Fprintf(os.Stderr, "end-bounty failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("bounty ended, tx %s\n", token)
		},
	}

	cmd.Flags().StringVar(&bountyAddr, "bounty", "", "bounty object address")
	_ = cmd.MarkFlagRequired("bounty")

	return cmd
}

func newDryRunGateway(cfg *config.Config) (*chain.Gateway, chain.Signer) {
	signerAddr, err := chainaddr.Parse(globalFlags.signer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad --signer: %v\n", err)
		os.Exit(1)
	}

	client := chaintest.NewFakeClient()
	gw := chain.NewGateway(chain.GatewayParams{
		Config: cfg,
		Client: client,
	})
	return gw, chaintest.NewFakeSigner(signerAddr, client)
}
