package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/ipv4"
)

const (
	// DiscoveryPort is the UDP port readers listen on for probes
	DiscoveryPort = 8134

	// ProbeMessage is the datagram that asks readers to identify themselves
	ProbeMessage = "hello"

	// replyMarker must appear in a reply for it to count as a reader
	replyMarker = "crosspoint"

	// probeTTL keeps unicast probes to extra hosts within a few hops
	probeTTL = 4

	maxReplySize = 512
)

// ErrInvalidReply is returned by ParseReply for datagrams that are not reader replies
var ErrInvalidReply = errors.New("invalid discovery reply")

// UDPProber broadcasts a probe and waits for the first reader reply
type UDPProber struct {
	// Port is the destination port for probes (DiscoveryPort by default)
	Port int

	// BroadcastAddrs are probed in addition to Request.ExtraHosts.
	// Defaults to the limited broadcast address.
	BroadcastAddrs []string
}

// NewUDPProber creates a prober with default settings
func NewUDPProber() *UDPProber {
	return &UDPProber{
		Port:           DiscoveryPort,
		BroadcastAddrs: []string{"255.255.255.255"},
	}
}

// Name implements Strategy
func (p *UDPProber) Name() string { return "udp" }

// Probe implements Strategy
func (p *UDPProber) Probe(ctx context.Context, req Request) (*Device, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	pc := ipv4.NewPacketConn(conn)
	_ = pc.SetTTL(probeTTL)
	// Interface info is best effort; not every platform supports it
	cmErr := pc.SetControlMessage(ipv4.FlagInterface, true)

	targets := p.targets(req.ExtraHosts)
	sent := 0
	for _, target := range targets {
		addr, err := net.ResolveUDPAddr("udp4", target)
		if err != nil {
			req.logf("discovery: cannot resolve %s: %v", target, err)
			continue
		}
		if _, err := pc.WriteTo([]byte(ProbeMessage), nil, addr); err != nil {
			req.logf("discovery: probe to %s failed: %v", target, err)
			continue
		}
		sent++
	}
	if sent == 0 {
		return nil, fmt.Errorf("no probe could be sent to %d target(s)", len(targets))
	}

	// Unblock the read as soon as the context ends
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	buf := make([]byte, maxReplySize)
	for {
		n, cm, src, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrNotFound
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to read discovery reply: %w", err)
		}

		udpAddr, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}

		hostname, port, err := ParseReply(string(buf[:n]))
		if err != nil {
			req.logf("discovery: ignoring %q from %s", string(buf[:n]), udpAddr.IP)
			continue
		}

		host := udpAddr.IP.String()
		if hostname == "" {
			hostname = host
		}
		meta := map[string]string{"reply": string(buf[:n])}
		if cmErr == nil && cm != nil && cm.IfIndex > 0 {
			if iface, err := net.InterfaceByIndex(cm.IfIndex); err == nil {
				meta["iface"] = iface.Name
			}
		}

		return &Device{
			Host:         host,
			Port:         port,
			Hostname:     hostname,
			Source:       p.Name(),
			Metadata:     meta,
			DiscoveredAt: time.Now(),
		}, nil
	}
}

// targets returns host:port strings for every broadcast address and
// extra host, without duplicates.
func (p *UDPProber) targets(extra []string) []string {
	port := p.Port
	if port == 0 {
		port = DiscoveryPort
	}

	seen := make(map[string]bool)
	var out []string
	for _, h := range append(append([]string{}, p.BroadcastAddrs...), extra...) {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, net.JoinHostPort(h, strconv.Itoa(port)))
	}
	return out
}

// ParseReply extracts the hostname and upload port from a reader reply of
// the form "crosspoint (on HOSTNAME);PORT[,ALTPORT]". The hostname part is
// optional.
func ParseReply(reply string) (hostname string, port int, err error) {
	reply = strings.TrimSpace(reply)
	if !strings.Contains(strings.ToLower(reply), replyMarker) {
		return "", 0, ErrInvalidReply
	}

	semi := strings.IndexByte(reply, ';')
	if semi < 0 {
		return "", 0, fmt.Errorf("%w: missing port separator", ErrInvalidReply)
	}

	portPart := reply[semi+1:]
	if comma := strings.IndexByte(portPart, ','); comma >= 0 {
		portPart = portPart[:comma]
	}
	port, err = strconv.Atoi(strings.TrimSpace(portPart))
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: bad port %q", ErrInvalidReply, portPart)
	}

	head := reply[:semi]
	if on := strings.Index(head, "(on "); on >= 0 {
		if end := strings.IndexByte(head[on:], ')'); end > len("(on ") {
			hostname = strings.TrimSpace(head[on+len("(on ") : on+end])
		}
	}

	return hostname, port, nil
}
