package device

import (
	"context"
	"time"

	"github.com/muurk/crosspoint/internal/config"
	"github.com/muurk/crosspoint/internal/discovery"
	"github.com/muurk/crosspoint/internal/logging"
)

const (
	// DebounceWindow is the minimum interval between discovery attempts.
	DebounceWindow = 2 * time.Second

	// DiscoveryTimeout bounds one discovery attempt.
	DiscoveryTimeout = time.Second
)

// Clock returns the current time.
type Clock func() time.Time

// Coordinator rate-limits discovery. The timestamp of the last attempt
// lives on the session so it survives Eject.
type Coordinator struct {
	Session    *Session
	Discoverer discovery.Discoverer
	Log        func(string)
}

// Discover runs one discovery attempt unless the previous one started less
// than DebounceWindow before now. Failures are logged and reported as false.
func (c *Coordinator) Discover(ctx context.Context, now time.Time, opts *config.Options) (*discovery.Device, bool) {
	if now.Sub(c.Session.LastDiscovery) < DebounceWindow {
		return nil, false
	}
	c.Session.LastDiscovery = now

	d := c.Discoverer
	if d == nil {
		d = discovery.NewClient(opts.MDNS)
	}

	dev, err := d.Discover(ctx, discovery.Request{
		Timeout:    DiscoveryTimeout,
		Debug:      opts.Debug,
		Logger:     c.Log,
		ExtraHosts: []string{opts.Host},
	})
	if err != nil || dev == nil {
		logging.LogDiscovery("coordinator", opts.Host, opts.Port, errOrNotFound(err))
		return nil, false
	}

	logging.LogDiscovery(dev.Source, dev.Host, dev.Port, nil)
	return dev, true
}

func errOrNotFound(err error) error {
	if err == nil {
		return discovery.ErrNotFound
	}
	return err
}
