package main

import (
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "corevaultd",
	Short: "corevaultd - memory and task vault daemon",
	Long:  "A markdown-file-backed store for memories and tasks, with auto-linking and a tool gateway.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, initCmd, backupCmd, restoreCmd, healthcheckCmd)
}
