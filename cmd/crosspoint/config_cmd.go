package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/crosspoint/internal/config"
	"github.com/muurk/crosspoint/internal/device"
	"github.com/muurk/crosspoint/internal/ui"
)

var forceInit bool

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite without asking")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change driver settings",
	Long: `Show or change the settings stored in the config file.

Keys:
  host         Reader address used when discovery finds nothing
  port         Upload port (websocket)
  path         Upload directory on the reader
  chunk_size   Bytes per chunk, capped at 2048 when uploading
  debug        Record the driver trace
  mdns         Also browse mDNS during discovery
  status_port  Port of the reader's status page
  log_level    Developer log level (debug, info, warn, error)`,
}

func openStore() (*config.FileStore, error) {
	return config.NewFileStore(configPath)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		opts, err := store.Load()
		if err != nil {
			return err
		}

		details := make(map[string]string, len(config.Keys()))
		for _, k := range config.Keys() {
			v, _ := opts.Get(k)
			details[k] = v
		}
		if opts.ChunkSize > device.MaxChunkSize {
			details[config.KeyChunkSize] += fmt.Sprintf(" (uploads use %d)", device.MaxChunkSize)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("Configuration", "crosspoint config show", map[string]string{"File": store.Path})
		p.PrintSuccess("Settings", details)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Change one setting",
	Example: "  crosspoint config set host 192.168.1.40\n  crosspoint config set chunk_size 1024",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		opts, err := store.Update(func(o *config.Options) error {
			return o.Set(args[0], args[1])
		})
		if err != nil {
			return err
		}
		v, _ := opts.Get(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), store.Path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if _, err := os.Stat(store.Path); err == nil && !forceInit {
			if !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), store.Path) {
				return nil
			}
		}
		if err := store.Save(config.NewOptions()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", store.Path)
		return nil
	},
}
