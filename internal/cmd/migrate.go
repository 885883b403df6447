package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateDBPath string

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Bring the schema up to date and install indexes",
	GroupID: groupCore,
	RunE:    runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDBPath, "db", "", "database file path (overrides config)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db, _, err := openLongLived(ctx, migrateDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("schema up to date")
	return nil
}
