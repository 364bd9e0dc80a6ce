package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corevault/corevault/internal/backup"
	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/corevault/corevault/internal/store"
)

var healthCheckInterval time.Duration

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "report snapshot freshness, stray files, and orphaned connections",
	RunE:  runHealthcheck,
}

func init() {
	healthcheckCmd.Flags().DurationVar(&healthCheckInterval, "interval", 24*time.Hour, "expected interval between snapshots, for staleness detection")
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("healthcheck: resolving working directory: %w", err)
	}
	roots, err := pathcfg.Resolve(cwd)
	if err != nil {
		return fmt.Errorf("healthcheck: resolving data roots: %w", err)
	}

	snap, err := backup.New(roots, maxBackupsFlag)
	if err != nil {
		return fmt.Errorf("healthcheck: setting up snapshotter: %w", err)
	}
	report, err := snap.CheckHealth(healthCheckInterval)
	if err != nil {
		return fmt.Errorf("healthcheck: checking snapshots: %w", err)
	}

	s, err := store.Open(roots)
	if err != nil {
		return fmt.Errorf("healthcheck: opening store: %w", err)
	}
	orphans, err := s.DetectOrphans()
	if err != nil {
		return fmt.Errorf("healthcheck: scanning for orphaned connections: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "snapshots: %d (latest %s, age %s, overdue=%v)\n",
		report.SnapshotCount, report.LatestSnapshot, report.LatestSnapshotAge.Round(time.Second), report.Overdue)
	fmt.Fprintf(out, "unexpected files: %d\n", len(report.UnexpectedFiles))
	for _, f := range report.UnexpectedFiles {
		fmt.Fprintf(out, "  %s\n", f)
	}
	fmt.Fprintf(out, "orphaned connections: %d\n", len(orphans))
	for _, o := range orphans {
		fmt.Fprintf(out, "  task=%s memory=%s\n", o.TaskID, o.MemoryID)
	}

	if report.Overdue || len(report.UnexpectedFiles) > 0 || len(orphans) > 0 {
		os.Exit(1)
	}
	return nil
}
