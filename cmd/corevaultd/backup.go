package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corevault/corevault/internal/backup"
	"github.com/corevault/corevault/internal/pathcfg"
)

var backupReason string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "take a snapshot of the memories/tasks/data trees",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupReason, "reason", "manual", "label recorded in the snapshot's manifest")
}

func runBackup(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("backup: resolving working directory: %w", err)
	}
	roots, err := pathcfg.Resolve(cwd)
	if err != nil {
		return fmt.Errorf("backup: resolving data roots: %w", err)
	}
	snap, err := backup.New(roots, maxBackupsFlag)
	if err != nil {
		return fmt.Errorf("backup: setting up snapshotter: %w", err)
	}
	name, err := snap.Snapshot(backupReason)
	if err != nil {
		return fmt.Errorf("backup: taking snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), name)
	return nil
}
