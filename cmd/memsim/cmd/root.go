// Package cmd provides the command-line interface of memsim.
package cmd

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// newRootCmd builds the base command and all its subcommands. Flag defaults
// come from the environment at the time of the call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "memsim",
		Short: "memsim simulates allocators, paging and caches.",
		Long: `memsim simulates the memory subsystem of a computer: physical ` +
			`memory allocators, a paged virtual memory and a cache hierarchy. ` +
			`It is driven by text commands, from scripts or an interactive shell.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", envOr("MEMSIM_LOG_LEVEL", "info"),
		"Log level: debug, info, warn or error.")
	flags.String("trace", envOr("MEMSIM_TRACE", ""),
		"Write a text trace of every event to this file, - for stderr.")
	flags.String("db", envOr("MEMSIM_DB", ""),
		"Record the events into this SQLite database (without extension).")
	flags.Bool("monitor", false, "Serve the simulation state over HTTP.")
	flags.Int("monitor-port", envIntOr("MEMSIM_MONITOR_PORT", 0),
		"Port of the monitoring server. A random port is used by default.")
	flags.Bool("open-monitor", false,
		"Open the monitoring server in a browser. Implies --monitor.")
	flags.String("cache-config", "",
		"JSON file with the hierarchy used by a bare \"init cache\".")

	rootCmd.AddCommand(newRunCmd(), newShellCmd(), newReportCmd())

	return rootCmd
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func envIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	_ = godotenv.Load()

	err := newRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
