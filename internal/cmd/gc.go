package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var gcDBPath string

var gcCmd = &cobra.Command{
	Use:     "gc",
	Short:   "Prune spent inputs and orphaned binary data past the retention window",
	GroupID: groupMaint,
	RunE:    runGC,
}

func init() {
	gcCmd.Flags().StringVar(&gcDBPath, "db", "", "database file path (overrides config)")
}

func runGC(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db, _, err := openLongLived(ctx, gcDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	prunedInputs, err := db.PruneInputs(ctx)
	if err != nil {
		return fmt.Errorf("prune inputs: %w", err)
	}
	prunedBinary, err := db.PruneBinaryData(ctx)
	if err != nil {
		return fmt.Errorf("prune binary data: %w", err)
	}

	fmt.Printf("pruned %d spent input(s), %d orphaned binary_data row(s)\n", prunedInputs, prunedBinary)
	return nil
}
