package device

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/muurk/crosspoint/internal/config"
	"github.com/muurk/crosspoint/internal/discovery"
	"github.com/muurk/crosspoint/internal/transfer"
)

type fakeDiscoverer struct {
	mu       sync.Mutex
	device   *discovery.Device
	err      error
	requests []discovery.Request
}

func (f *fakeDiscoverer) Discover(ctx context.Context, req discovery.Request) (*discovery.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if req.Debug && req.Logger != nil {
		req.Logger("probing")
	}
	return f.device, f.err
}

func (f *fakeDiscoverer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeDiscoverer) succeed(host string, port int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.device = &discovery.Device{Host: host, Port: port, Source: "fake"}
	f.err = nil
}

// fakeTransferer reports progress in Steps equal chunks per file.
type fakeTransferer struct {
	Steps    int
	Fail     map[string]error
	requests []transfer.Request
}

func (f *fakeTransferer) Transfer(ctx context.Context, req transfer.Request, onProgress transfer.ProgressFunc) error {
	f.requests = append(f.requests, req)
	if err := req.Validate(); err != nil {
		return err
	}
	if err := f.Fail[req.Filename]; err != nil {
		return err
	}

	info, err := os.Stat(req.LocalPath)
	if err != nil {
		return transfer.NewIOError("cannot stat file", err)
	}
	total := info.Size()

	steps := f.Steps
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		onProgress(total*int64(i)/int64(steps), total)
	}
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)}
}

type progressRecorder struct {
	fractions []float64
	messages  []string
}

func (r *progressRecorder) report(fraction float64, message string) {
	r.fractions = append(r.fractions, fraction)
	r.messages = append(r.messages, message)
}

type failingConfig struct{}

func (failingConfig) Load() (*config.Options, error) {
	return nil, os.ErrPermission
}

func options(mutate func(o *config.Options)) config.Static {
	o := config.NewOptions()
	if mutate != nil {
		mutate(o)
	}
	return config.Static{Options: o}
}

// makeFile creates a sparse file of the given size.
func makeFile(t *testing.T, name string, size int64) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create %s: %v", p, err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", p, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", p, err)
	}
	return p
}

type testDriver struct {
	*Driver
	disc  *fakeDiscoverer
	xfer  *fakeTransferer
	clock *fakeClock
}

func newTestDriver(t *testing.T, cfg ConfigSource) *testDriver {
	t.Helper()
	td := &testDriver{
		disc:  &fakeDiscoverer{err: discovery.ErrNotFound},
		xfer:  &fakeTransferer{Steps: 4},
		clock: newClock(),
	}
	td.Driver = New(Options{
		Config:     cfg,
		Discoverer: td.disc,
		Transferer: td.xfer,
		Clock:      td.clock.Now,
	})
	return td
}
