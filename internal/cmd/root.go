package cmd

import (
	"github.com/spf13/cobra"
)

// Command group IDs
const (
	groupCore  = "core"
	groupMaint = "maintenance"
)

var rootCmd = &cobra.Command{
	Use:   "storecore",
	Short: "operate a storecore chain-index database",
	Long: `storecore - operate a storecore chain-index database

  - migrate    bring the schema up to date and install indexes
  - status     report database path, tip, and writer-lock state
  - gc         prune spent inputs and orphaned binary data past the retention window
  - rollback   roll the index back to an earlier slot`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Core Commands:"},
		&cobra.Group{ID: groupMaint, Title: "Maintenance:"},
	)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(versionCmd)
}
