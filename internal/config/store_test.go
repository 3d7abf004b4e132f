package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !contains(configDir, "crosspoint") {
		t.Errorf("GetConfigDir() = %v, should contain 'crosspoint'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !contains(configDir, "AppData") && !contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if os.Getenv("XDG_CONFIG_HOME") == "" && !contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestFileStore_LoadMissingReturnsDefaults(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "missing.yaml")}

	opts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.Host != DefaultHost || opts.Port != DefaultPort || opts.ChunkSize != DefaultChunkSize {
		t.Errorf("Load() = %+v, want defaults", opts)
	}
	if !opts.MDNS {
		t.Error("MDNS should default to true")
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	store := &FileStore{Path: path}

	opts := NewOptions()
	opts.Host = "10.0.0.7"
	opts.Port = 8181
	opts.Path = "/Books"
	opts.ChunkSize = 5000
	opts.Debug = true

	if err := store.Save(opts); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save()")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if *loaded != *opts {
		t.Errorf("Load() = %+v, want %+v", loaded, opts)
	}
}

func TestFileStore_LoadSeesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := &FileStore{Path: path}

	if err := os.WriteFile(path, []byte("chunk_size: 1024\n"), 0600); err != nil {
		t.Fatal(err)
	}
	first, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("chunk_size: 512\n"), 0600); err != nil {
		t.Fatal(err)
	}
	second, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if first.ChunkSize != 1024 || second.ChunkSize != 512 {
		t.Errorf("chunk sizes = %d, %d; want 1024, 512", first.ChunkSize, second.ChunkSize)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*testing.T, *Options)
	}{
		{
			name: "partial file keeps defaults",
			yaml: "debug: true\n",
			check: func(t *testing.T, o *Options) {
				if !o.Debug {
					t.Error("Debug should be true")
				}
				if !o.MDNS {
					t.Error("MDNS should keep its default")
				}
				if o.Port != DefaultPort {
					t.Errorf("Port = %d, want %d", o.Port, DefaultPort)
				}
			},
		},
		{
			name: "explicit zero port falls back to default",
			yaml: "port: 0\n",
			check: func(t *testing.T, o *Options) {
				if o.Port != DefaultPort {
					t.Errorf("Port = %d, want %d", o.Port, DefaultPort)
				}
			},
		},
		{
			name:    "unsupported version",
			yaml:    "version: 2\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "host: [unclosed\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Parse([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}

func TestOptionsSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{KeyHost, "192.168.1.20", false},
		{KeyPort, "8080", false},
		{KeyPort, "70000", true},
		{KeyPort, "abc", true},
		{KeyChunkSize, "5000", false},
		{KeyChunkSize, "0", true},
		{KeyDebug, "true", false},
		{KeyDebug, "maybe", true},
		{KeyMDNS, "false", false},
		{KeyPath, "/Books/New", false},
		{"colour", "blue", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			opts := NewOptions()
			err := opts.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := opts.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestFileStore_Update(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "config.yaml")}

	_, err := store.Update(func(o *Options) error {
		return o.Set(KeyHost, "10.1.1.1")
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	opts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.Host != "10.1.1.1" {
		t.Errorf("Host = %q, want 10.1.1.1", opts.Host)
	}

	data, err := os.ReadFile(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# CrossPoint Reader driver configuration") {
		t.Error("saved file should start with the header comment")
	}
}

func TestStatic_ReturnsCopies(t *testing.T) {
	src := Static{Options: NewOptions()}

	a, _ := src.Load()
	a.Host = "changed"

	b, _ := src.Load()
	if b.Host != DefaultHost {
		t.Errorf("Static.Load() leaked a mutation: Host = %q", b.Host)
	}
}

// Helper functions

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
