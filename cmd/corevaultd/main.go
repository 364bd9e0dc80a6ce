// Command corevaultd runs the memory/task vault: the markdown store, the
// auto-linker, the file-change watcher, and the tool gateway that fronts
// them, plus one-shot maintenance subcommands.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
