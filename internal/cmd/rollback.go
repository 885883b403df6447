package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rollbackDBPath string

var rollbackCmd = &cobra.Command{
	Use:     "rollback <slot>",
	Short:   "Roll the index back to an earlier slot",
	GroupID: groupMaint,
	Args:    cobra.ExactArgs(1),
	RunE:    runRollback,
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackDBPath, "db", "", "database file path (overrides config)")
}

func runRollback(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid slot %q: %w", args[0], err)
	}

	ctx := context.Background()
	db, _, err := openLongLived(ctx, rollbackDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	newTip, err := db.RollbackTo(ctx, target)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	if newTip == nil {
		fmt.Println("rolled back; no checkpoints remain")
		return nil
	}
	fmt.Printf("rolled back; new tip is slot %d\n", *newTip)
	return nil
}
