package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corevault/corevault/internal/backup"
	"github.com/corevault/corevault/internal/pathcfg"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot-name>",
	Short: "restore the memories/tasks/data trees from a named snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("restore: resolving working directory: %w", err)
	}
	roots, err := pathcfg.Resolve(cwd)
	if err != nil {
		return fmt.Errorf("restore: resolving data roots: %w", err)
	}
	snap, err := backup.New(roots, maxBackupsFlag)
	if err != nil {
		return fmt.Errorf("restore: setting up snapshotter: %w", err)
	}
	if err := snap.Recover(args[0]); err != nil {
		return fmt.Errorf("restore: recovering %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "restored from %s\n", args[0])
	return nil
}
