package main

import (
	"github.com/muurk/crosspoint/internal/config"
)

// flagSource applies command-line overrides on top of the config file.
// The file is re-read on every Load.
type flagSource struct {
	store *config.FileStore
	host  string
	port  int
	debug bool
}

func (s *flagSource) Load() (*config.Options, error) {
	var (
		opts *config.Options
		err  error
	)
	if s.store != nil {
		opts, err = s.store.Load()
		if err != nil {
			return nil, err
		}
	} else {
		opts = config.NewOptions()
	}

	if s.host != "" {
		opts.Host = s.host
	}
	if s.port > 0 {
		opts.Port = s.port
	}
	if s.debug {
		opts.Debug = true
	}
	return opts, nil
}

// newConfigSource builds the source from the global flags. A missing
// config directory falls back to defaults.
func newConfigSource() *flagSource {
	src := &flagSource{host: deviceHost, port: devicePort, debug: traceFlag}
	if store, err := config.NewFileStore(configPath); err == nil {
		src.store = store
	}
	return src
}
