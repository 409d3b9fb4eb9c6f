package cmd

import (
	"ctoken/config"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// command for migrating database
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate the kv_records table of the sql driver",
	Run: func(cmd *cobra.Command, args []string) {
		if driver := cfg.Store.Driver; driver != config.DriverSQL {
			cmd.Printf("store driver %q keeps no tables, nothing to migrate\n", driver)
			return
		}

		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate database error:", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
