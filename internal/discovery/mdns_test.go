package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantHost     string
		wantPort     int
		wantHostname string
	}{
		{
			name: "reader with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "crosspoint.local.",
				Port:     81,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.40")},
			},
			wantHost:     "192.168.1.40",
			wantPort:     81,
			wantHostname: "crosspoint.local",
		},
		{
			name: "no port falls back to default",
			entry: &zeroconf.ServiceEntry{
				HostName: "reader.local",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantHost:     "10.0.0.5",
			wantPort:     DefaultPort,
			wantHostname: "reader.local",
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "reader.local",
				Port:     81,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantHost:     "fe80::1",
			wantPort:     81,
			wantHostname: "reader.local",
		},
		{
			name: "prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "reader.local",
				Port:     81,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantHost:     "192.168.1.50",
			wantPort:     81,
			wantHostname: "reader.local",
		},
		{
			name: "missing hostname uses instance",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Study Reader"},
				Port:          81,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.51")},
			},
			wantHost:     "192.168.1.51",
			wantPort:     81,
			wantHostname: "Study Reader",
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "reader.local",
				Port:     81,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}

			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil device")
			}

			if device.Host != tt.wantHost {
				t.Errorf("device.Host = %v, want %v", device.Host, tt.wantHost)
			}

			if device.Port != tt.wantPort {
				t.Errorf("device.Port = %v, want %v", device.Port, tt.wantPort)
			}

			if device.Hostname != tt.wantHostname {
				t.Errorf("device.Hostname = %v, want %v", device.Hostname, tt.wantHostname)
			}

			if device.Source != "mdns" {
				t.Errorf("device.Source = %v, want mdns", device.Source)
			}

			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		HostName: "crosspoint.local",
		Port:     81,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.1")},
		Text:     []string{"version=0.9.0", "path=/", "flag"},
	}

	device := scanner.parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	expectedMetadata := map[string]string{
		"version": "0.9.0",
		"path":    "/",
		"flag":    "",
	}

	if len(device.Metadata) != len(expectedMetadata) {
		t.Errorf("device.Metadata has %d entries, want %d", len(device.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := device.Metadata[key]; !ok {
			t.Errorf("device.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("device.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner.Service != ServiceType {
		t.Errorf("Service = %v, want %v", scanner.Service, ServiceType)
	}
	if (&Scanner{}).service() != ServiceType {
		t.Error("empty Service should browse ServiceType")
	}
}
