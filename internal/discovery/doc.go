// Package discovery locates CrossPoint readers on the local network.
//
// Two strategies run side by side under one timeout and the first reply
// wins:
//
//   - UDP probe: a "hello" datagram is broadcast on port 8134 and sent
//     directly to any extra candidate hosts. A reader in file-transfer mode
//     answers with "crosspoint (on HOSTNAME);PORT", where PORT is its
//     websocket upload port.
//   - mDNS: readers that advertise "_crosspoint._tcp" are resolved with
//     zeroconf.
//
// # Usage Example
//
//	client := discovery.NewClient(true)
//	dev, err := client.Discover(ctx, discovery.Request{
//	    Timeout:    time.Second,
//	    ExtraHosts: []string{"192.168.4.1"},
//	})
//	if errors.Is(err, discovery.ErrNotFound) {
//	    // nobody answered, poll again later
//	}
//
// # Network Requirements
//
//   - UDP broadcast must be allowed on the local segment
//   - mDNS needs multicast support (UDP port 5353)
//   - The reader and the computer must share a network, or the reader's
//     address must be passed as an extra host
//
// # Thread Safety
//
// Client and its strategies hold no mutable state and may be used
// concurrently.
package discovery
