package cmd

import (
	"github.com/spf13/cobra"
)

var initMarketCmd = &cobra.Command{
	Use:     "init-market",
	Aliases: []string{"im"},
	Short:   "initialize the market from the market section of the config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store := provideStore()
		defer store.Close()

		block, _ := cmd.Flags().GetUint64("block")
		if err := initMarket(ctx, provideMarketService(store), provideBlockService(), block); err != nil {
			cmd.PrintErrln("init market failed:", err)
			return
		}

		cmd.Println("market initialized")
	},
}

func init() {
	rootCmd.AddCommand(initMarketCmd)
	initMarketCmd.Flags().Uint64("block", 0, "init block, default the current block")
}
