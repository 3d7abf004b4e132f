package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type readers advertise
	ServiceType = "_crosspoint._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultPort is the websocket upload port assumed when an entry has none
	DefaultPort = 81
)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Service is the service type to browse (ServiceType by default)
	Service string
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{Service: ServiceType}
}

// Name implements Strategy
func (s *Scanner) Name() string { return "mdns" }

// Probe implements Strategy. It returns the first reader resolved before
// ctx ends.
func (s *Scanner) Probe(ctx context.Context, req Request) (*Device, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Device, 1)

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device == nil {
				continue
			}
			select {
			case found <- device:
				cancel()
			default:
			}
		}
	}()

	if err := resolver.Browse(ctx, s.service(), ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-found:
		return device, nil
	case <-ctx.Done():
		// A device may have landed right as the context ended
		select {
		case device := <-found:
			return device, nil
		default:
		}
		return nil, ErrNotFound
	}
}

func (s *Scanner) service() string {
	if s.Service == "" {
		return ServiceType
	}
	return s.Service
}

// parseServiceEntry converts a zeroconf service entry to a Device
// Returns nil if the entry has no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	hostname := strings.TrimSuffix(entry.HostName, ".")
	if hostname == "" {
		hostname = entry.Instance
	}
	if hostname == "" {
		hostname = ip
	}

	return &Device{
		Host:         ip,
		Port:         port,
		Hostname:     hostname,
		Source:       s.Name(),
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
