package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corevault/corevault/internal/pathcfg"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "create the memories/tasks/data directory tree in the current directory",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("init: resolving working directory: %w", err)
	}
	roots, err := pathcfg.Resolve(cwd)
	if err != nil {
		return fmt.Errorf("init: resolving data roots: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "memories: %s\ntasks:    %s\ndata:     %s\n",
		roots.MemoriesRoot, roots.TasksRoot, roots.DataRoot)
	return nil
}
