package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "crosspoint"
	configFile = "config.yaml"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/crosspoint or $HOME/.config/crosspoint
//   - macOS: $HOME/.config/crosspoint (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\crosspoint
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// FileStore reads and writes Options at a fixed path.
type FileStore struct {
	Path string
}

// NewFileStore creates a store for path. An empty path selects the
// platform default from GetConfigPath.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}
	return &FileStore{Path: path}, nil
}

// Load reads the file and returns a fresh snapshot.
// A missing file yields the defaults.
func (s *FileStore) Load() (*Options, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return NewOptions(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults so keys absent from data keep
// their default values.
func Parse(data []byte) (*Options, error) {
	opts := NewOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if opts.Version != 0 && opts.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", opts.Version, CurrentVersion)
	}

	opts.applyDefaults()
	return opts, nil
}

// Save writes opts to the store path.
// Performs an atomic write to prevent corruption on crash.
func (s *FileStore) Save(opts *Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := opts.Clone()
	out.Version = CurrentVersion

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# CrossPoint Reader driver configuration
#
# host/port are used when the reader has not been discovered on the network.
# chunk_size is capped at 2048 bytes when uploading.
#
# Location: ` + s.Path + `

`)
	data = append(header, data...)

	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// Update loads the current options, applies fn and saves the result.
func (s *FileStore) Update(fn func(*Options) error) (*Options, error) {
	opts, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(opts); err != nil {
		return nil, err
	}
	if err := s.Save(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Static is a Load source that always returns a copy of the same options.
type Static struct {
	Options *Options
}

// Load returns a copy of the wrapped options, or defaults when nil.
func (s Static) Load() (*Options, error) {
	if s.Options == nil {
		return NewOptions(), nil
	}
	return s.Options.Clone(), nil
}
