package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kupoindex/storecore/internal/config"
	"github.com/kupoindex/storecore/internal/store"
)

var statusDBPath string

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show database path, tip, and writer-lock state",
	GroupID: groupCore,
	RunE:    runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusDBPath, "db", "", "database file path (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := cfg.Database.Path
	if statusDBPath != "" {
		path = statusDBPath
	}
	if path == "" {
		return fmt.Errorf("no database path configured (set database.path or pass --db)")
	}

	fmt.Printf("database: %s\n", path)

	if store.IsWriterLocked(path) {
		fmt.Printf("writer:   held by pid %d\n", store.WriterLockHolderPID(path))
	} else {
		fmt.Println("writer:   free")
	}

	ctx := context.Background()
	db, err := store.OpenShortLived(ctx, store.OnDisk(path), store.ReadOnly, cfg.Database.LongestRollback, nil, nil)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	checkpoints, err := db.ListCheckpointsDesc(ctx)
	if err != nil {
		return fmt.Errorf("list checkpoints: %w", err)
	}
	if len(checkpoints) == 0 {
		fmt.Println("tip:      (no checkpoints)")
		return nil
	}
	fmt.Printf("tip:      slot %d\n", checkpoints[0].SlotNo)
	fmt.Printf("retained: %d checkpoint sample(s)\n", len(checkpoints))
	return nil
}
