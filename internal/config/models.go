package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = 1

// Defaults for a device in access-point mode.
const (
	DefaultHost       = "192.168.4.1"
	DefaultPort       = 81
	DefaultPath       = "/"
	DefaultChunkSize  = 2048
	DefaultStatusPort = 80
)

// Option keys as they appear in the YAML file and on the CLI.
const (
	KeyHost       = "host"
	KeyPort       = "port"
	KeyPath       = "path"
	KeyChunkSize  = "chunk_size"
	KeyDebug      = "debug"
	KeyMDNS       = "mdns"
	KeyStatusPort = "status_port"
	KeyLogLevel   = "log_level"
)

// Options is a snapshot of the driver configuration.
type Options struct {
	Version    int    `yaml:"version"`
	Host       string `yaml:"host"`                // Fallback device host when not discovered
	Port       int    `yaml:"port"`                // Fallback transfer port
	Path       string `yaml:"path"`                // Remote upload directory
	ChunkSize  int    `yaml:"chunk_size"`          // Requested chunk size in bytes (capped at use time)
	Debug      bool   `yaml:"debug"`               // Verbose driver trace
	MDNS       bool   `yaml:"mdns"`                // Also browse mDNS during discovery
	StatusPort int    `yaml:"status_port"`         // Device web server port for /status
	LogLevel   string `yaml:"log_level,omitempty"` // zap level for developer logs
}

// NewOptions returns options populated with defaults.
func NewOptions() *Options {
	return &Options{
		Version:    CurrentVersion,
		Host:       DefaultHost,
		Port:       DefaultPort,
		Path:       DefaultPath,
		ChunkSize:  DefaultChunkSize,
		Debug:      false,
		MDNS:       true,
		StatusPort: DefaultStatusPort,
	}
}

// Clone returns an independent copy.
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// applyDefaults fills zero values left by a partial file.
func (o *Options) applyDefaults() {
	if o.Version == 0 {
		o.Version = CurrentVersion
	}
	if o.Host == "" {
		o.Host = DefaultHost
	}
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.StatusPort == 0 {
		o.StatusPort = DefaultStatusPort
	}
}

// Validate checks values that can never work. Chunk sizes above the
// transfer ceiling are accepted here; the driver caps them when used.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.Host) == "" {
		return fmt.Errorf("%s must not be empty", KeyHost)
	}
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", KeyPort, o.Port)
	}
	if o.StatusPort < 1 || o.StatusPort > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", KeyStatusPort, o.StatusPort)
	}
	if o.ChunkSize < 1 {
		return fmt.Errorf("%s must be positive, got %d", KeyChunkSize, o.ChunkSize)
	}
	return nil
}

// Get returns the string form of the option named key.
func (o *Options) Get(key string) (string, error) {
	switch key {
	case KeyHost:
		return o.Host, nil
	case KeyPort:
		return strconv.Itoa(o.Port), nil
	case KeyPath:
		return o.Path, nil
	case KeyChunkSize:
		return strconv.Itoa(o.ChunkSize), nil
	case KeyDebug:
		return strconv.FormatBool(o.Debug), nil
	case KeyMDNS:
		return strconv.FormatBool(o.MDNS), nil
	case KeyStatusPort:
		return strconv.Itoa(o.StatusPort), nil
	case KeyLogLevel:
		return o.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown option %q", key)
	}
}

// Set parses value and assigns it to the option named key.
func (o *Options) Set(key, value string) error {
	var err error
	switch key {
	case KeyHost:
		o.Host = strings.TrimSpace(value)
	case KeyPort:
		o.Port, err = strconv.Atoi(value)
	case KeyPath:
		o.Path = value
	case KeyChunkSize:
		o.ChunkSize, err = strconv.Atoi(value)
	case KeyDebug:
		o.Debug, err = strconv.ParseBool(value)
	case KeyMDNS:
		o.MDNS, err = strconv.ParseBool(value)
	case KeyStatusPort:
		o.StatusPort, err = strconv.Atoi(value)
	case KeyLogLevel:
		o.LogLevel = value
	default:
		return fmt.Errorf("unknown option %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return o.Validate()
}

// Keys lists the recognised option names in sorted order.
func Keys() []string {
	keys := []string{KeyHost, KeyPort, KeyPath, KeyChunkSize, KeyDebug, KeyMDNS, KeyStatusPort, KeyLogLevel}
	sort.Strings(keys)
	return keys
}
