// Crosspoint sends books to a CrossPoint Reader over WiFi.
//
// The reader is found on the local network with a UDP broadcast (and mDNS
// when enabled), then each file is streamed over a websocket in chunks of
// at most 2048 bytes. Settings live in a YAML file under the user config
// directory; see 'crosspoint config path'.
//
// Usage:
//
//	crosspoint [command] [flags]
//
// See 'crosspoint --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/crosspoint/internal/logging"
	"github.com/muurk/crosspoint/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crosspoint",
	Short: "CrossPoint Reader wireless transfer utility",
	Long: `Send EPUB books to a CrossPoint Reader over WiFi.

Open File Transfer on the reader, then run 'crosspoint upload book.epub'.
The reader is discovered automatically; use --device to skip discovery.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crosspoint %s\n", version.Full())
	},
}

// initLogging applies --log-level, then the config file's log_level, then
// CROSSPOINT_LOG_LEVEL. Logging stays silent when none is set.
func initLogging() error {
	level := logLevel
	if level == "" {
		if opts, err := newConfigSource().Load(); err == nil {
			level = opts.LogLevel
		}
	}
	if level == "" {
		return logging.InitializeFromEnv()
	}
	return logging.Initialize(level)
}
