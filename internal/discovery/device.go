package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a reader that answered discovery
type Device struct {
	// Host is the address the reply came from (e.g., "192.168.4.1")
	Host string

	// Port is the websocket upload port announced by the reader (typically 81)
	Port int

	// Hostname is the name the reader reported, or Host when it sent none
	Hostname string

	// Source names the strategy that found the device ("udp" or "mdns")
	Source string

	// Metadata contains extra details such as mDNS TXT records or the
	// receiving interface
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("CrossPoint Reader %s at %s:%d (via %s)", d.Hostname, d.Host, d.Port, d.Source)
}

// Address returns host:port suitable for dialing
func (d *Device) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
