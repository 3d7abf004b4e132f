package device

import (
	"fmt"
	"time"

	"github.com/muurk/crosspoint/internal/config"
)

// State is the connection state of a Session.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the driver's view of the reader. Host and Port are set only
// while State is Connected.
type Session struct {
	State         State
	Host          string
	Port          int
	LastDiscovery time.Time
}

// Connected reports whether a reader has been detected and not ejected.
func (s Session) Connected() bool {
	return s.State == Connected
}

func (s *Session) connect(host string, port int) {
	s.State = Connected
	s.Host = host
	s.Port = port
}

func (s *Session) disconnect() {
	s.State = Disconnected
	s.Host = ""
	s.Port = 0
}

// Target returns the cached address when connected and the configured
// fallback otherwise.
func (s Session) Target(opts *config.Options) (string, int) {
	if s.Connected() {
		return s.Host, s.Port
	}
	return opts.Host, opts.Port
}

// Address formats Target as host:port.
func (s Session) Address(opts *config.Options) string {
	host, port := s.Target(opts)
	return fmt.Sprintf("%s:%d", host, port)
}
