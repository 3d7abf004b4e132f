// Package config stores the driver options in a YAML file.
//
// The file holds the handful of options the device driver recognises:
// the fallback device host and port, the remote upload directory, the
// transfer chunk size and the debug flag. It follows OS-specific
// conventions for its location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/crosspoint/config.yaml or $HOME/.config/crosspoint/config.yaml
//   - macOS: $HOME/.config/crosspoint/config.yaml
//   - Windows: %LOCALAPPDATA%\crosspoint\config.yaml
//
// # Usage Example
//
//	store, err := config.NewFileStore("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opts, err := store.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(opts.Host, opts.Port, opts.ChunkSize)
//
// # Snapshots
//
// FileStore never caches. Every Load re-reads the file so edits take
// effect on the next driver operation.
//
// # Thread Safety
//
// File writes are serialised by a package mutex and are atomic
// (temporary file plus rename).
package config
