package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("default logger should be silent")
	}
}

func TestLogDiscovery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogDiscovery("udp", "192.168.4.1", 81, nil)
	LogDiscovery("mdns", "", 0, errors.New("no reply"))

	if logs.Len() != 2 {
		t.Fatalf("logged %d entries, want 2", logs.Len())
	}

	entries := logs.All()
	if entries[0].Message != "Device discovered" {
		t.Errorf("first message = %q", entries[0].Message)
	}
	if entries[0].ContextMap()["port"] != int64(81) {
		t.Errorf("port field = %v, want 81", entries[0].ContextMap()["port"])
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("failure should log at debug, got %v", entries[1].Level)
	}
}
