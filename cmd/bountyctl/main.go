// bountyctl holds the offline scripts for operating a bounty board
// deployment: submitting writes and inspecting the mirror without the UI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bountyboard/pkg/config"
	"bountyboard/pkg/db"
)

const programName = "bountyctl"

var globalFlags = struct {
	dryRun bool
	signer string
}{}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Operate a bounty board deployment from the command line",
	}

	rootCmd.PersistentFlags().
		BoolVar(&globalFlags.dryRun, "dry-run", false, "submit writes against an in-memory chain fake instead of a node")
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.signer, "signer", "0x1", "signer account address")

	rootCmd.AddCommand(createBountyCommand())
	rootCmd.AddCommand(endBountyCommand())
	rootCmd.AddCommand(lastBountyCommand())
	rootCmd.AddCommand(overviewCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() *config.Config {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)

	return config.LoadConfig()
}

func openMirror(cfg *config.Config) *gorm.DB {
	return db.New(cfg, db.Dialect(cfg))
}
