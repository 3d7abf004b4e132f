package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/crosspoint/internal/device"
	"github.com/muurk/crosspoint/internal/discovery"
	"github.com/muurk/crosspoint/internal/logging"
	"github.com/muurk/crosspoint/internal/status"
	"github.com/muurk/crosspoint/internal/ui"
)

// Global flags
var (
	deviceHost  string
	devicePort  int
	configPath  string
	logLevel    string
	traceFlag   bool
	scanTimeout time.Duration
	anyFormat   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceHost, "device", "", "Reader address (overrides the configured host)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Reader upload port (overrides the configured port)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Developer log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "Enable the driver trace and print it after the command")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(uploadCmd)
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newDriver() (*device.Driver, *flagSource) {
	src := newConfigSource()
	return device.New(device.Options{Config: src}), src
}

func printTrace(p *ui.Printer, d *device.Driver) {
	if !traceFlag {
		return
	}
	p.Newline()
	p.PrintTrace(d.Log().Render(), 0)
}

// detectOrFallback asks the driver for the reader. When discovery fails the
// configured address is used, as Upload would.
func detectOrFallback(ctx context.Context, d *device.Driver, src *flagSource) (string, int, bool, error) {
	opts, err := src.Load()
	if err != nil {
		return "", 0, false, fmt.Errorf("failed to load config: %w", err)
	}
	if s, ok := d.Detect(ctx); ok {
		return s.Host, s.Port, true, nil
	}
	return opts.Host, opts.Port, false, nil
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Look for a CrossPoint Reader on the network",
	Long: `Broadcast a discovery probe and report the first reader that answers.

The configured host (or --device) is probed directly as well, which helps
on networks that drop broadcasts.`,
	Example: `  crosspoint scan
  crosspoint scan --timeout 5s
  crosspoint scan --device 192.168.1.40`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 3*time.Second, "How long to wait for an answer")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts, err := newConfigSource().Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Scan", "crosspoint scan", map[string]string{
		"Timeout":    scanTimeout.String(),
		"Extra host": opts.Host,
		"mDNS":       fmt.Sprintf("%t", opts.MDNS),
	})

	sink := logging.NewSink(logging.DefaultSinkCapacity)
	dev, err := discovery.NewClient(opts.MDNS).Discover(ctx, discovery.Request{
		Timeout:    scanTimeout,
		Debug:      true,
		Logger:     sink.Func(),
		ExtraHosts: []string{opts.Host},
	})
	if err != nil {
		p.PrintError("No reader found", err, []string{
			"Open File Transfer on the reader",
			"Join the same WiFi network as the reader",
			"In hotspot mode the reader is usually 192.168.4.1",
			"Try a longer --timeout",
		})
		if traceFlag {
			p.Newline()
			p.PrintTrace(sink.Render(), 0)
		}
		return err
	}

	details := map[string]string{
		"Address":  dev.Address(),
		"Found by": dev.Source,
	}
	if dev.Hostname != "" {
		details["Hostname"] = dev.Hostname
	}
	if iface := dev.GetMetadata("iface"); iface != "" {
		details["Interface"] = iface
	}
	p.PrintSuccess("Reader found", details)
	if traceFlag {
		p.Newline()
		p.PrintTrace(sink.Render(), 0)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reader's firmware and WiFi status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	d, src := newDriver()
	host, _, found, err := detectOrFallback(ctx, d, src)
	if err != nil {
		return err
	}
	opts, err := src.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Status", "crosspoint status", map[string]string{
		"Device":     fmt.Sprintf("%s:%d", host, opts.StatusPort),
		"Discovered": fmt.Sprintf("%t", found),
	})

	st, err := status.NewClient(host, opts.StatusPort).Get(ctx)
	if err != nil {
		p.PrintError("Status unavailable", err, []string{
			"The status page is served only while File Transfer is open",
			"Check status_port in the config (default 80)",
		})
		printTrace(p, d)
		return err
	}

	p.PrintSuccess("Reader online", map[string]string{
		"Firmware":  st.Version,
		"IP":        st.IP,
		"Signal":    fmt.Sprintf("%d dBm (%s)", st.RSSI, st.SignalQuality()),
		"Free heap": ui.FormatBytes(st.FreeHeap),
		"Uptime":    st.UptimeDuration().String(),
	})
	printTrace(p, d)
	return nil
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the device descriptor reported to library managers",
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	d, _ := newDriver()
	session, found := d.Detect(ctx)
	info := d.Info()
	space := d.TotalSpace()

	p := ui.NewPrinter(cmd.OutOrStdout())
	details := map[string]string{
		"Name":     info.Name,
		"Version":  info.Version,
		"Store":    info.Main.UUID,
		"Capacity": ui.FormatBytes(space.Main) + " (nominal)",
		"Formats":  strings.Join(device.Formats, ", "),
	}
	if found {
		details["Address"] = fmt.Sprintf("%s:%d", session.Host, session.Port)
		p.PrintSuccess("Reader connected", details)
	} else {
		details["Address"] = "not discovered"
		p.PrintWarning("Reader not found", details)
	}
	printTrace(p, d)
	return nil
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Send books to the reader",
	Long: `Send one or more books to the reader's upload directory.

Files are sent in order. The first failure stops the batch; files already
sent stay on the reader.`,
	Example: `  crosspoint upload book.epub
  crosspoint upload *.epub --device 192.168.4.1
  crosspoint upload notes.txt --any-format`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&anyFormat, "any-format", false, "Send files that are not EPUB")
}

// supportedFormat reports whether path has one of the reader's formats.
func supportedFormat(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range device.Formats {
		if ext == f {
			return true
		}
	}
	return false
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	items := make([]device.UploadItem, 0, len(args))
	names := make([]string, 0, len(args))
	for _, path := range args {
		if !anyFormat && !supportedFormat(path) {
			return fmt.Errorf("%s: unsupported format (the reader accepts %s; use --any-format to send anyway)",
				path, strings.Join(device.Formats, ", "))
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		item := device.UploadItem{Path: path}
		items = append(items, item)
		names = append(names, item.DestinationName(path))
	}

	d, src := newDriver()
	host, port, found, err := detectOrFallback(ctx, d, src)
	if err != nil {
		return err
	}
	opts, err := src.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	target := fmt.Sprintf("%s:%d", host, port)
	if !found {
		target += " (not discovered)"
	}

	runner := ui.NewUploadRunner(ui.UploadRunnerConfig{
		Title:   "Upload",
		Command: "crosspoint upload",
		Params: map[string]string{
			"Device": target,
			"Path":   opts.Path,
			"Files":  fmt.Sprintf("%d", len(items)),
		},
		Files:        names,
		Interactive:  ui.IsTerminal(),
		Output:       cmd.OutOrStdout(),
		Troubleshoot: troubleshooter(found),
		ErrorTitle:   failureTitle,
		Trace: func() string {
			if !traceFlag || d.Log().Len() == 0 {
				return ""
			}
			return d.Log().Render()
		},
	})

	_, err = runner.Run(ctx, func(ctx context.Context, report func(float64, string)) (map[string]string, error) {
		d.SetProgressReporter(report)
		defer d.SetProgressReporter(nil)

		results, err := d.Upload(ctx, items)
		if err != nil {
			return nil, err
		}

		sizes := make([]int64, len(results))
		for i, r := range results {
			sizes[i] = r.Size
		}
		return ui.Summary(names, sizes), nil
	})
	return err
}
