package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/muurk/crosspoint/internal/logging"
)

// DefaultTimeout bounds a single discovery attempt
const DefaultTimeout = 1 * time.Second

// ErrNotFound is returned when no strategy located a reader in time
var ErrNotFound = errors.New("no reader found")

// Request carries the parameters of one discovery attempt
type Request struct {
	// Timeout bounds the whole attempt (DefaultTimeout when zero)
	Timeout time.Duration

	// Debug enables per-step trace messages through Logger
	Debug bool

	// Logger receives human-readable trace lines. May be nil.
	Logger func(string)

	// ExtraHosts are probed directly in addition to the broadcast
	ExtraHosts []string
}

func (r Request) logf(format string, args ...any) {
	if r.Debug && r.Logger != nil {
		r.Logger(fmt.Sprintf(format, args...))
	}
}

// Discoverer locates one reader. A nil device with ErrNotFound means
// nobody answered before the timeout.
type Discoverer interface {
	Discover(ctx context.Context, req Request) (*Device, error)
}

// Strategy is a single way of finding a reader
type Strategy interface {
	Name() string
	Probe(ctx context.Context, req Request) (*Device, error)
}

// Client runs its strategies concurrently and returns the first device found
type Client struct {
	Strategies []Strategy
}

// NewClient creates a client with the UDP probe and, when withMDNS is
// set, the mDNS browser.
func NewClient(withMDNS bool) *Client {
	strategies := []Strategy{NewUDPProber()}
	if withMDNS {
		strategies = append(strategies, NewScanner())
	}
	return &Client{Strategies: strategies}
}

type probeResult struct {
	source string
	device *Device
	err    error
}

// Discover implements Discoverer
func (c *Client) Discover(ctx context.Context, req Request) (*Device, error) {
	if len(c.Strategies) == 0 {
		return nil, fmt.Errorf("%w: no discovery strategies configured", ErrNotFound)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so late strategies never block after we return
	results := make(chan probeResult, len(c.Strategies))
	for _, s := range c.Strategies {
		go func(s Strategy) {
			dev, err := s.Probe(ctx, req)
			results <- probeResult{source: s.Name(), device: dev, err: err}
		}(s)
	}

	var errs []error
	for range c.Strategies {
		res := <-results
		if res.err == nil && res.device != nil {
			logging.LogDiscovery(res.source, res.device.Host, res.device.Port, nil)
			req.logf("discovery: %s", res.device)
			return res.device, nil
		}
		if res.err == nil {
			res.err = ErrNotFound
		}
		logging.LogDiscovery(res.source, "", 0, res.err)
		req.logf("discovery: %s found nothing: %v", res.source, res.err)
		errs = append(errs, fmt.Errorf("%s: %w", res.source, res.err))
	}

	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}
